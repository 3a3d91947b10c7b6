package smx

import (
	"fmt"
	"path/filepath"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"
)

// TargetConfig is a named script collection with its own folder and settings.
type TargetConfig struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

// Targets manages the targets of the local config.
//
// The default target is recorded in the targets.default setting of the
// local config and can not be deleted.
type Targets struct {
	handler  *Handler
	settings *Manager
}

// NewTargets creates a Targets over the handler of m.
func NewTargets(m *Manager) *Targets {
	return &Targets{
		handler:  m.Handler(),
		settings: m,
	}
}

func (t *Targets) local() (*ConfigFile[LocalConfig], error) {
	f := t.handler.LocalFile()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrScopeNotLoaded, ScopeLocal)
	}

	return f, nil
}

// Get returns the target with the given id.
func (t *Targets) Get(id string) (TargetConfig, bool) {
	f, err := t.local()
	if err != nil {
		return TargetConfig{}, false
	}

	tc, found := f.Config().Targets[id]

	return tc, found
}

// List returns all targets sorted by id.
func (t *Targets) List() []TargetConfig {
	f, err := t.local()
	if err != nil {
		return nil
	}

	targets := f.Config().Targets
	out := make([]TargetConfig, 0, len(targets))
	for _, id := range set.SortedKeys(targets) {
		out = append(out, targets[id])
	}

	return out
}

// Add creates a target and its folder. The id doubles as the folder name.
func (t *Targets) Add(id, name string) (TargetConfig, error) {
	if !validID(id) {
		return TargetConfig{}, fmt.Errorf("%w: target id %q", ErrInvalidKey, id)
	}

	f, err := t.local()
	if err != nil {
		return TargetConfig{}, err
	}

	cfg := f.Config()
	if _, found := cfg.Targets[id]; found {
		return TargetConfig{}, fmt.Errorf("%w: %s", ErrTargetExists, id)
	}

	if name == "" {
		name = id
	}
	tc := TargetConfig{
		ID:       id,
		Name:     name,
		Settings: Settings{},
	}
	cfg.Targets[id] = tc

	if err := f.Save(); err != nil {
		return tc, err
	}

	dir, err := t.Dir(id)
	if err != nil {
		return tc, err
	}

	debug.Log("added target %s at %s", id, dir.Path())

	return tc, dir.Create()
}

// Rename changes the display name of a target.
func (t *Targets) Rename(id, name string) error {
	f, err := t.local()
	if err != nil {
		return err
	}

	cfg := f.Config()
	tc, found := cfg.Targets[id]
	if !found {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, id)
	}
	tc.Name = name
	cfg.Targets[id] = tc

	return f.Save()
}

// Default returns the id of the default target. The local config takes
// precedence over the global config.
func (t *Targets) Default() string {
	for _, scope := range []Scope{ScopeLocal, ScopeGlobal} {
		if v, found := t.settings.Get(DefaultTargetKey, scope, ""); found {
			if id, ok := v.(string); ok {
				return id
			}
		}
	}

	return ""
}

// SetDefault marks an existing target as the default target.
func (t *Targets) SetDefault(id string) error {
	if _, found := t.Get(id); !found {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, id)
	}

	return t.settings.Set(DefaultTargetKey, id, ScopeLocal, "")
}

// Delete removes a target and, if removeFolder is set, its folder.
// The default target is refused without touching the config.
func (t *Targets) Delete(id string, removeFolder bool) error {
	if def := t.Default(); def != "" && id == def {
		debug.Log("refusing to delete default target %s", id)

		return fmt.Errorf("%w: %s", ErrDefaultTarget, id)
	}

	f, err := t.local()
	if err != nil {
		return err
	}

	cfg := f.Config()
	if _, found := cfg.Targets[id]; !found {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, id)
	}

	dir, err := t.Dir(id)
	if err != nil {
		return err
	}

	delete(cfg.Targets, id)
	if t.handler.TargetID() == id {
		t.handler.SetTargetID("")
	}

	if err := f.Save(); err != nil {
		return err
	}

	if removeFolder {
		return dir.Delete()
	}

	return nil
}

// Reset clears the settings of a target and empties its folder.
func (t *Targets) Reset(id string) error {
	f, err := t.local()
	if err != nil {
		return err
	}

	cfg := f.Config()
	tc, found := cfg.Targets[id]
	if !found {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, id)
	}

	dir, err := t.Dir(id)
	if err != nil {
		return err
	}

	tc.Settings = Settings{}
	cfg.Targets[id] = tc

	if err := f.Save(); err != nil {
		return err
	}

	return dir.Empty()
}

// Folder returns the folder of a target: the target.folder setting of the
// target if set, relative paths being relative to the local repo, else a
// folder named after the id inside the local repo.
func (t *Targets) Folder(id string) (string, error) {
	if _, err := t.local(); err != nil {
		return "", err
	}

	if _, found := t.Get(id); !found {
		return "", fmt.Errorf("%w: %s", ErrTargetNotFound, id)
	}

	root := t.handler.LocalRoot()
	if v, found := t.settings.Get(TargetFolderKey, ScopeTarget, id); found {
		if p, ok := v.(string); ok && p != "" {
			if filepath.IsAbs(p) {
				return filepath.Clean(p), nil
			}

			return filepath.Join(root, p), nil
		}
	}

	return filepath.Join(root, id), nil
}

// Dir returns the Directory backing a target.
func (t *Targets) Dir(id string) (*Directory, error) {
	p, err := t.Folder(id)
	if err != nil {
		return nil, err
	}

	return NewDirectory(t.handler.Fs(), p), nil
}
