package smx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"
)

// Scope is the granularity a setting value is stored at.
type Scope string

const (
	// ScopeAuto resolves the scope from the priority order.
	ScopeAuto Scope = ""
	// ScopeGlobal is the settings object of the global config.
	ScopeGlobal Scope = "global"
	// ScopeLocal is the settings object of the local config.
	ScopeLocal Scope = "local"
	// ScopeTarget is the settings object of a single target.
	ScopeTarget Scope = "target"
)

// ParseScope converts a scope name. The empty string is ScopeAuto.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(s)); sc {
	case ScopeAuto, ScopeGlobal, ScopeLocal, ScopeTarget:
		return sc, nil
	default:
		return ScopeAuto, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// DefaultPriority is the lookup order used when no scope is given.
var DefaultPriority = []Scope{ScopeTarget, ScopeLocal, ScopeGlobal}

// Manager resolves, validates and persists settings across scopes.
//
// Scope Priority (default, highest to lowest):
// 1. The settings of the active target
// 2. The local config settings
// 3. The global config settings
//
// Fields:
// - Priority: Lookup order for ScopeAuto
// - GOOS: Operating system used to resolve OSValues, defaults to runtime.GOOS
//
// Usage:
//
//	m := NewManager(handler, NewValidator())
//	v, found := m.Get("editor.files.tool", ScopeAuto, "")
//	err := m.Set("git.branch", "main", ScopeLocal, "")
type Manager struct {
	handler   *Handler
	validator *Validator

	Priority []Scope
	GOOS     string
}

// NewManager creates a Manager over the config files owned by h.
// A nil validator accepts every value. A nil handler is a wiring bug and panics.
func NewManager(h *Handler, v *Validator) *Manager {
	if h == nil {
		panic("smx: settings manager requires a config handler")
	}
	if v == nil {
		v = NewValidator()
	}

	return &Manager{
		handler:   h,
		validator: v,
		Priority:  append([]Scope(nil), DefaultPriority...),
		GOOS:      runtime.GOOS,
	}
}

// Handler returns the config handler.
func (m *Manager) Handler() *Handler {
	return m.handler
}

// Validator returns the validator applied before writes.
func (m *Manager) Validator() *Validator {
	return m.validator
}

// backing is the settings object of one scope and the file owning it.
type backing struct {
	scope    Scope
	settings func(create bool) Settings
	save     func() error
}

func (m *Manager) goos() string {
	if m.GOOS == "" {
		return runtime.GOOS
	}

	return m.GOOS
}

func (m *Manager) priority() []Scope {
	if len(m.Priority) == 0 {
		return DefaultPriority
	}

	return m.Priority
}

func (m *Manager) resolveTarget(id string) string {
	if id != "" {
		return id
	}

	return m.handler.TargetID()
}

// backing returns the settings object of an explicit scope.
func (m *Manager) backing(scope Scope, targetID string) (*backing, error) {
	switch scope {
	case ScopeGlobal:
		f := m.handler.GlobalFile()
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrScopeNotLoaded, scope)
		}
		cfg := f.Config()

		return &backing{
			scope: scope,
			settings: func(create bool) Settings {
				if cfg.Settings == nil && create {
					cfg.Settings = Settings{}
				}

				return cfg.Settings
			},
			save: f.Save,
		}, nil
	case ScopeLocal:
		f := m.handler.LocalFile()
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrScopeNotLoaded, scope)
		}
		cfg := f.Config()

		return &backing{
			scope: scope,
			settings: func(create bool) Settings {
				if cfg.Settings == nil && create {
					cfg.Settings = Settings{}
				}

				return cfg.Settings
			},
			save: f.Save,
		}, nil
	case ScopeTarget:
		id := m.resolveTarget(targetID)
		if id == "" {
			return nil, ErrTargetNotSet
		}
		f := m.handler.LocalFile()
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrScopeNotLoaded, scope)
		}
		cfg := f.Config()
		if _, found := cfg.Targets[id]; !found {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, id)
		}

		return &backing{
			scope: scope,
			settings: func(create bool) Settings {
				t := cfg.Targets[id]
				if t.Settings == nil && create {
					t.Settings = Settings{}
					cfg.Targets[id] = t
				}

				return t.Settings
			},
			save: f.Save,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
}

// lookup finds the first scope in priority order where key is present.
func (m *Manager) lookup(key, targetID string) (Setting, Scope, bool) {
	for _, scope := range m.priority() {
		b, err := m.backing(scope, targetID)
		if err != nil {
			debug.V(3).Log("skipping scope %s for %s: %s", scope, key, err)

			continue
		}
		if s, found := b.settings(false)[key]; found {
			return s, scope, true
		}
	}

	debug.V(3).Log("no value for %s found", key)

	return Setting{}, ScopeAuto, false
}

// GetSetting returns the stored setting for key without resolving OSValues.
//
// With ScopeAuto the scopes are searched in priority order and the first
// scope where the key is present wins, even if the value is false, 0 or "".
// An explicit scope only looks at that scope. A scope that is not loaded
// or a target that does not exist is reported as not found.
func (m *Manager) GetSetting(key string, scope Scope, targetID string) (Setting, bool) {
	if scope == ScopeAuto {
		s, _, found := m.lookup(key, targetID)

		return s, found
	}

	b, err := m.backing(scope, targetID)
	if err != nil {
		debug.V(1).Log("can not read %s from %s: %s", key, scope, err)

		return Setting{}, false
	}

	s, found := b.settings(false)[key]

	return s, found
}

// Get returns the effective value of key on the current operating system.
// See GetSetting for scope resolution.
//
// Example:
//
//	tool, found := m.Get("editor.files.tool", ScopeAuto, "")
//	if found {
//	  fmt.Printf("Using %v\n", tool)
//	}
func (m *Manager) Get(key string, scope Scope, targetID string) (any, bool) {
	s, found := m.GetSetting(key, scope, targetID)
	if !found {
		return nil, false
	}

	return s.Resolve(m.goos()), true
}

// Origin returns the scope that provides key under ScopeAuto.
func (m *Manager) Origin(key, targetID string) (Scope, bool) {
	_, scope, found := m.lookup(key, targetID)

	return scope, found
}

// writeBacking returns the scope a write goes to. ScopeAuto always writes
// to the local scope, even if the key resolves from another scope.
func (m *Manager) writeBacking(scope Scope, targetID string) (*backing, error) {
	if scope == ScopeAuto {
		scope = ScopeLocal
	}

	return m.backing(scope, targetID)
}

// Set validates value and stores it under key, then saves the owning
// config file. On error nothing is modified or saved.
//
// A key already holding an OSValue keeps that shape, value becomes the
// override of the manager's operating system. Delete the key first to
// replace the OSValue with a plain value.
//
// Errors:
// - ErrInvalidKey for malformed keys
// - *ValidationError (matches ErrValidation) for rejected values
// - ErrScopeNotLoaded, ErrTargetNotSet, ErrTargetNotFound for unusable scopes
// - ErrWriteConfig if saving failed, the value is set in memory
func (m *Manager) Set(key string, value any, scope Scope, targetID string) error {
	return m.write(key, value, scope, targetID, func(old Setting) Setting {
		if old.Kind() == KindOS {
			return old.WithOS(m.goos(), value)
		}

		return NewPlain(value)
	})
}

// SetForOS stores value as the goos override of key. A plain value already
// stored under key becomes the default of the new OSValue. An empty goos
// means the manager's operating system.
func (m *Manager) SetForOS(key string, value any, goos string, scope Scope, targetID string) error {
	if goos == "" {
		goos = m.goos()
	}

	return m.write(key, value, scope, targetID, func(old Setting) Setting {
		return old.WithOS(goos, value)
	})
}

func (m *Manager) write(key string, value any, scope Scope, targetID string, update func(Setting) Setting) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	if err := checkStorable(key, value); err != nil {
		debug.Log("refusing to set %s: %s", key, err)

		return err
	}

	if err := m.validator.Validate(key, value); err != nil {
		debug.Log("refusing to set %s: %s", key, err)

		return err
	}

	b, err := m.writeBacking(scope, targetID)
	if err != nil {
		debug.Log("can not set %s: %s", key, err)

		return err
	}

	settings := b.settings(true)
	settings[key] = update(settings[key])
	debug.V(1).Log("set %s in %s", key, b.scope)

	return b.save()
}

// Delete removes key and saves the owning config file. Deleting a key that
// is not set is a no-op. ScopeAuto deletes from the local scope.
func (m *Manager) Delete(key string, scope Scope, targetID string) error {
	b, err := m.writeBacking(scope, targetID)
	if err != nil {
		debug.Log("can not delete %s: %s", key, err)

		return err
	}

	settings := b.settings(false)
	if _, found := settings[key]; !found {
		debug.V(1).Log("%s not set in %s", key, b.scope)

		return nil
	}

	delete(settings, key)
	debug.V(1).Log("deleted %s from %s", key, b.scope)

	return b.save()
}

// Save saves every loaded config file.
func (m *Manager) Save() error {
	var errs []error
	if f := m.handler.GlobalFile(); f != nil {
		errs = append(errs, f.Save())
	}
	if f := m.handler.LocalFile(); f != nil {
		errs = append(errs, f.Save())
	}

	return errors.Join(errs...)
}

// Keys returns the sorted keys set in scope. ScopeAuto returns the keys of
// every available scope.
func (m *Manager) Keys(scope Scope, targetID string) []string {
	scopes := []Scope{scope}
	if scope == ScopeAuto {
		scopes = m.priority()
	}

	keys := make([]string, 0, 64)
	for _, sc := range scopes {
		b, err := m.backing(sc, targetID)
		if err != nil {
			continue
		}
		for k := range b.settings(false) {
			keys = append(keys, k)
		}
	}

	return set.Sorted(keys)
}

// List returns the sorted keys in scope matching the glob pattern. A dot
// separates key components, so "editor.*" matches "editor.theme" but not
// "editor.files.tool", while "editor.**" matches both. An empty pattern
// matches every key.
func (m *Manager) List(pattern string, scope Scope, targetID string) ([]string, error) {
	keys := m.Keys(scope, targetID)
	if pattern == "" {
		return keys, nil
	}

	if _, err := globMatch(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return set.SortedFiltered(keys, func(k string) bool {
		ok, _ := globMatch(pattern, k)

		return ok
	}), nil
}

// Sections returns the sorted first components of all keys.
func (m *Manager) Sections() []string {
	return set.Sorted(set.Apply(m.Keys(ScopeAuto, ""), func(k string) string {
		section, _ := splitKey(k)

		return section
	}))
}
