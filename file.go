package smx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
)

// Storage reads and writes the raw text of a single config document.
//
// FileHandler is the implementation used outside of tests.
type Storage interface {
	// Path returns the location of the document.
	Path() string
	// ReadText returns the document or def if it can not be read.
	ReadText(def string) string
	// WriteText replaces the document with content.
	WriteText(content string) error
}

// StorageFactory creates the Storage for a config file path.
type StorageFactory func(path string) Storage

// NewStorageFactory returns a StorageFactory creating FileHandlers on fsys.
func NewStorageFactory(fsys afero.Fs) StorageFactory {
	return func(path string) Storage {
		return NewFileHandler(fsys, path)
	}
}

// FileHandler persists a text document at a fixed path.
//
// Reads never fail: a missing or unreadable file yields the caller supplied
// default. Writes create the parent directory, write to a temporary sibling
// and rename it over the target so a crash never leaves a half written file.
type FileHandler struct {
	fs   afero.Fs
	path string
}

// NewFileHandler creates a FileHandler for path on fsys. A nil fsys
// means the OS filesystem.
func NewFileHandler(fsys afero.Fs, path string) *FileHandler {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &FileHandler{
		fs:   fsys,
		path: path,
	}
}

// Path returns the file path.
func (f *FileHandler) Path() string {
	return f.path
}

// Exists returns true if the file exists.
func (f *FileHandler) Exists() bool {
	ok, err := afero.Exists(f.fs, f.path)

	return err == nil && ok
}

// ReadText returns the file content or def if the file is missing or
// can not be read.
func (f *FileHandler) ReadText(def string) string {
	buf, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			debug.V(1).Log("no file at %s, using default", f.path)
		} else {
			debug.Log("failed to read %s, using default: %s", f.path, err)
		}

		return def
	}

	return string(buf)
}

// WriteText replaces the file content, creating parent directories as needed.
func (f *FileHandler) WriteText(content string) error {
	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o700); err != nil {
		debug.Log("failed to create directory %q for %q: %s", dir, f.path, err)

		return fmt.Errorf("%w %q for %q: %w", ErrCreateConfigDir, dir, f.path, err)
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, []byte(content), 0o600); err != nil {
		debug.Log("failed to write %s: %s", tmp, err)

		return fmt.Errorf("%w to %s: %w", ErrWriteConfig, f.path, err)
	}

	if err := f.fs.Rename(tmp, f.path); err != nil {
		_ = f.fs.Remove(tmp)
		debug.Log("failed to rename %s to %s: %s", tmp, f.path, err)

		return fmt.Errorf("%w to %s: %w", ErrWriteConfig, f.path, err)
	}

	debug.V(3).Log("wrote %s: \n--------------\n%s\n--------------", f.path, content)

	return nil
}

// ReadJSON decodes the document held by s. A missing, empty or malformed
// document yields def. Comments and trailing commas are tolerated since
// the files are meant to be edited by hand.
func ReadJSON[T any](s Storage, def T) T {
	raw := s.ReadText("")
	if strings.TrimSpace(raw) == "" {
		return def
	}

	var v T
	if err := json.Unmarshal(jsonc.ToJSON([]byte(raw)), &v); err != nil {
		debug.Log("failed to parse %s, using default: %s", s.Path(), err)

		return def
	}

	return v
}

// WriteJSON encodes v with two space indentation and writes it to s.
func WriteJSON(s Storage, v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.Path(), err)
	}

	return s.WriteText(string(buf) + "\n")
}
