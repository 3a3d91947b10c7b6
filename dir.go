package smx

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/spf13/afero"
)

// Directory manages a folder on disk, e.g. the folder backing a target.
type Directory struct {
	fs   afero.Fs
	path string
}

// NewDirectory creates a Directory for path on fsys. A nil fsys means the
// OS filesystem.
func NewDirectory(fsys afero.Fs, path string) *Directory {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Directory{
		fs:   fsys,
		path: path,
	}
}

// Path returns the folder path.
func (d *Directory) Path() string {
	return d.path
}

// Exists returns true if the folder exists.
func (d *Directory) Exists() bool {
	ok, err := afero.DirExists(d.fs, d.path)

	return err == nil && ok
}

// Create creates the folder and any missing parents.
func (d *Directory) Create() error {
	if err := d.fs.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.path, err)
	}

	return nil
}

// Empty removes everything inside the folder, creating it if it is missing.
func (d *Directory) Empty() error {
	entries, err := afero.ReadDir(d.fs, d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d.Create()
		}

		return fmt.Errorf("failed to read %s: %w", d.path, err)
	}

	for _, e := range entries {
		p := filepath.Join(d.path, e.Name())
		if err := d.fs.RemoveAll(p); err != nil {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}

	debug.V(1).Log("emptied %s", d.path)

	return nil
}

// Delete removes the folder and its content. A missing folder is not an error.
func (d *Directory) Delete() error {
	if err := d.fs.RemoveAll(d.path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", d.path, err)
	}

	debug.V(1).Log("deleted %s", d.path)

	return nil
}

// Load returns the sorted names of the folder entries. A missing folder
// has no entries.
func (d *Directory) Load() ([]string, error) {
	entries, err := afero.ReadDir(d.fs, d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", d.path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names, nil
}
