package smx

import (
	"fmt"
	"slices"

	"github.com/gopasspw/gopass/pkg/debug"
)

// Section is a read/write facade over a fixed group of settings keys.
//
// Reads resolve through the Manager like any other lookup. Writes go
// through the Manager and then save every loaded config file.
//
// Fields:
// - Scope: Scope reads and writes use, ScopeAuto by default
// - PerOS: Writes store an override for the manager's operating system
//
// Usage:
//
//	editor := NewEditorSettings(m)
//	tool := editor.FilesTool.Get()
//	err := editor.FilesTool.Set("nvim")
type Section struct {
	mgr  *Manager
	name string
	keys []string

	Scope Scope
	PerOS bool
}

// NewSection creates a section named name over keys.
func NewSection(m *Manager, name string, keys ...string) *Section {
	return &Section{
		mgr:  m,
		name: name,
		keys: slices.Clone(keys),
	}
}

// Name returns the section name.
func (s *Section) Name() string {
	return s.name
}

// Keys returns the declared keys.
func (s *Section) Keys() []string {
	return slices.Clone(s.keys)
}

func (s *Section) declare(key string) {
	if !slices.Contains(s.keys, key) {
		s.keys = append(s.keys, key)
	}
}

func (s *Section) check(key string) error {
	if !slices.Contains(s.keys, key) {
		return fmt.Errorf("%w: %q is not part of section %s", ErrInvalidKey, key, s.name)
	}

	return nil
}

// Get returns the resolved value of a declared key.
func (s *Section) Get(key string) (any, bool) {
	if err := s.check(key); err != nil {
		debug.V(1).Log("%s", err)

		return nil, false
	}

	return s.mgr.Get(key, s.Scope, "")
}

// Value returns a snapshot of every declared key that resolves to a value.
// Mutating the returned map does not change any setting.
func (s *Section) Value() map[string]any {
	out := make(map[string]any, len(s.keys))
	for _, k := range s.keys {
		if v, found := s.mgr.Get(k, s.Scope, ""); found {
			out[k] = v
		}
	}

	return out
}

// Set writes a declared key and saves.
func (s *Section) Set(key string, value any) error {
	if err := s.check(key); err != nil {
		return err
	}

	var err error
	if s.PerOS {
		err = s.mgr.SetForOS(key, value, "", s.Scope, "")
	} else {
		err = s.mgr.Set(key, value, s.Scope, "")
	}
	if err != nil {
		return err
	}

	// TODO: batch consecutive section writes into a single save.
	return s.mgr.Save()
}

// Delete removes a declared key and saves.
func (s *Section) Delete(key string) error {
	if err := s.check(key); err != nil {
		return err
	}

	if err := s.mgr.Delete(key, s.Scope, ""); err != nil {
		return err
	}

	return s.mgr.Save()
}

// FieldType lists the Go types a Field can hold.
type FieldType interface {
	string | bool | int | float64 | []string
}

// Field is a typed key of a Section.
type Field[T FieldType] struct {
	section *Section
	key     string
	def     T
}

// NewField declares key in s and returns a typed accessor for it. A type
// definition matching T is registered unless the key already has one.
func NewField[T FieldType](s *Section, key string, def T) Field[T] {
	s.declare(key)

	if v := s.mgr.Validator(); v != nil {
		if _, found := v.Definition(key); !found {
			v.AddDefinition(definitionFor[T](key))
		}
	}

	return Field[T]{
		section: s,
		key:     key,
		def:     def,
	}
}

// Key returns the settings key.
func (f Field[T]) Key() string {
	return f.key
}

// Get returns the resolved value or the field default if the key is unset
// or holds a value of another type.
func (f Field[T]) Get() T {
	v, found := f.section.Get(f.key)
	if !found {
		return f.def
	}

	out, ok := convert[T](v)
	if !ok {
		debug.Log("setting %s holds %T, using default", f.key, v)

		return f.def
	}

	return out
}

// IsSet returns true if the key resolves to a value.
func (f Field[T]) IsSet() bool {
	_, found := f.section.Get(f.key)

	return found
}

// Set writes v and saves.
func (f Field[T]) Set(v T) error {
	return f.section.Set(f.key, v)
}

// Delete removes the key and saves.
func (f Field[T]) Delete() error {
	return f.section.Delete(f.key)
}

func definitionFor[T FieldType](key string) Definition {
	var zero T
	switch any(zero).(type) {
	case string:
		return Definition{Key: key, Types: []ValueType{TypeString}}
	case bool:
		return Definition{Key: key, Types: []ValueType{TypeBoolean}}
	case int, float64:
		return Definition{Key: key, Types: []ValueType{TypeNumber}}
	default:
		return Definition{Key: key, Types: []ValueType{TypeString}, Array: ArrayForce}
	}
}

func convert[T FieldType](v any) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		s, ok := v.(string)
		*p = s

		return out, ok
	case *bool:
		b, ok := v.(bool)
		*p = b

		return out, ok
	case *int:
		f, ok := v.(float64)
		*p = int(f)

		return out, ok
	case *float64:
		f, ok := v.(float64)
		*p = f

		return out, ok
	case *[]string:
		arr, ok := v.([]any)
		if !ok {
			return out, false
		}
		ss := make([]string, 0, len(arr))
		for _, e := range arr {
			s, ok := e.(string)
			if !ok {
				return out, false
			}
			ss = append(ss, s)
		}
		*p = ss

		return out, true
	default:
		return out, false
	}
}

// Keys of the built-in sections.
const (
	EditorFilesTool  = "editor.files.tool"
	EditorFolderTool = "editor.folder.tool"
	EditorDiffTool   = "editor.diff.tool"
	DefaultTargetKey = "targets.default"
	TargetFolderKey  = "target.folder"
	GitBranchKey     = "git.branch"
	GitRemoteKey     = "git.remote"
	GitAutoSyncKey   = "git.autosync"
	GitIgnoreKey     = "git.ignore"
)

// EditorSettings selects the editor used per context. Values are stored
// per operating system since editor names differ between machines.
type EditorSettings struct {
	*Section

	FilesTool  Field[string]
	FolderTool Field[string]
	DiffTool   Field[string]
}

// NewEditorSettings creates the editor section.
func NewEditorSettings(m *Manager) *EditorSettings {
	s := NewSection(m, "editor")
	s.PerOS = true

	return &EditorSettings{
		Section:    s,
		FilesTool:  NewField(s, EditorFilesTool, "code"),
		FolderTool: NewField(s, EditorFolderTool, "code"),
		DiffTool:   NewField(s, EditorDiffTool, "code"),
	}
}

// Tool returns the editor name configured for ctx.
func (e *EditorSettings) Tool(ctx EditorContext) string {
	switch ctx {
	case ContextFolder:
		return e.FolderTool.Get()
	case ContextDiff:
		return e.DiffTool.Get()
	default:
		return e.FilesTool.Get()
	}
}

// GitSettings configures how the script folder is synced.
type GitSettings struct {
	*Section

	Branch   Field[string]
	Remote   Field[string]
	AutoSync Field[bool]
	Ignore   Field[[]string]
}

// NewGitSettings creates the git section.
func NewGitSettings(m *Manager) *GitSettings {
	s := NewSection(m, "git")

	return &GitSettings{
		Section:  s,
		Branch:   NewField(s, GitBranchKey, "main"),
		Remote:   NewField(s, GitRemoteKey, "origin"),
		AutoSync: NewField(s, GitAutoSyncKey, false),
		Ignore:   NewField(s, GitIgnoreKey, []string(nil)),
	}
}
