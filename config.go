package smx

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"
)

// ConfigFileName is appended to folder paths to locate a config file.
const ConfigFileName = ".smx.json"

// Current schema versions of the config documents.
const (
	GlobalConfigVersion = "1.0.0"
	LocalConfigVersion  = "1.0.0"
)

// BaseConfig holds the fields shared by every config document.
type BaseConfig struct {
	Settings Settings `json:"settings"`
	Version  string   `json:"version"`
}

// GlobalConfig is the machine wide config document.
type GlobalConfig struct {
	BaseConfig
	// Path is the absolute path of the local repo folder this machine uses.
	Path string `json:"path"`
}

// LocalConfig is the config document stored inside the script repo.
type LocalConfig struct {
	BaseConfig
	Editors map[string]EditorConfig `json:"editors"`
	Targets map[string]TargetConfig `json:"targets"`
	Units   map[string]UnitConfig   `json:"units"`
}

// DefaultGlobalConfig returns the template of the global config file.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		BaseConfig: BaseConfig{
			Settings: Settings{},
			Version:  GlobalConfigVersion,
		},
	}
}

// DefaultLocalConfig returns the template of the local config file.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		BaseConfig: BaseConfig{
			Settings: Settings{},
			Version:  LocalConfigVersion,
		},
		Editors: map[string]EditorConfig{
			"code": {
				Args:    []string{"code", DefaultTargetAlias},
				Context: Contexts{ContextFile, ContextFolder},
			},
			"vim": {
				Args:    []string{"vim", DefaultTargetAlias},
				Context: Contexts{ContextFile, ContextFolder},
			},
		},
		Targets: map[string]TargetConfig{},
		Units:   map[string]UnitConfig{},
	}
}

func (c *GlobalConfig) normalize() {
	if c.Settings == nil {
		c.Settings = Settings{}
	}
}

func (c *LocalConfig) normalize() {
	if c.Settings == nil {
		c.Settings = Settings{}
	}
	if c.Editors == nil {
		c.Editors = map[string]EditorConfig{}
	}
	if c.Targets == nil {
		c.Targets = map[string]TargetConfig{}
	}
	if c.Units == nil {
		c.Units = map[string]UnitConfig{}
	}
}

type normalizer interface {
	normalize()
}

// PathSpec locates a config file. Root denotes a folder if Folder is set,
// in which case ConfigFileName is appended.
type PathSpec struct {
	Root   string
	Folder bool
}

// FolderPath returns a PathSpec for the config file inside dir.
func FolderPath(dir string) PathSpec {
	return PathSpec{Root: dir, Folder: true}
}

// FilePath returns a PathSpec for the file at path.
func FilePath(path string) PathSpec {
	return PathSpec{Root: path}
}

// File returns the config file path.
func (p PathSpec) File() string {
	if p.Folder {
		return filepath.Join(p.Root, ConfigFileName)
	}

	return p.Root
}

// pathSpecFor treats paths ending in .json as files and anything else as folders.
func pathSpecFor(path string) PathSpec {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FilePath(path)
	}

	return FolderPath(path)
}

// Migration upgrades a merged document from one schema version to the next.
// It is called by Init before the version tag is bumped.
type Migration func(doc map[string]json.RawMessage, from, to semver.Version) error

// ConfigFile is a JSON config document backed by a Storage and seeded
// from a template.
//
// After Init the in-memory document is the single source of truth. Save
// always writes the whole document. Only one ConfigFile may exist per path
// in a process, otherwise the two copies overwrite each other's changes.
//
// Note: ConfigFile is not thread-safe.
//
// Typical Usage:
//
//	cf := NewConfigFile(FolderPath(repo), DefaultLocalConfig(), nil)
//	if err := cf.Init(); err != nil { ... }
//	cf.Config().Settings["git.branch"] = NewPlain("main")
//	if err := cf.Save(); err != nil { ... }
type ConfigFile[T any] struct {
	path        string
	template    T
	config      T
	store       Storage
	initialized bool

	// Migrate is invoked when the on-disk version differs from the template version.
	Migrate Migration
}

// NewConfigFile creates a ConfigFile for path. The template is copied.
// A nil factory persists to the OS filesystem.
func NewConfigFile[T any](path PathSpec, template T, factory StorageFactory) *ConfigFile[T] {
	if factory == nil {
		factory = NewStorageFactory(nil)
	}

	fn := path.File()
	tpl := clone(template)

	return &ConfigFile[T]{
		path:     fn,
		template: tpl,
		config:   clone(tpl),
		store:    factory(fn),
	}
}

// Path returns the config file path.
func (c *ConfigFile[T]) Path() string {
	return c.path
}

// Config returns the in-memory document. Mutations become durable on Save.
func (c *ConfigFile[T]) Config() *T {
	return &c.config
}

// Template returns a copy of the template document.
func (c *ConfigFile[T]) Template() T {
	return clone(c.template)
}

// Initialized returns true once Init has run.
func (c *ConfigFile[T]) Initialized() bool {
	return c.initialized
}

// Init loads the document, merges it with the template and writes the
// merged result back.
//
// Behavior:
// - A second call is a no-op
// - A missing or malformed file behaves like a file holding the template
// - Top-level fields on disk replace template fields
// - A top-level field with the wrong shape falls back to the template field
// - settings are merged per key, keys from disk win
// - The version is forced to the template version
// - The merged document is written immediately, even if nothing changed
//
// The returned error is a write failure, the in-memory document is usable anyway.
func (c *ConfigFile[T]) Init() error {
	if c.initialized {
		debug.Log("config %s already initialized", c.path)

		return nil
	}

	tpl, err := toObject(c.template)
	if err != nil {
		return fmt.Errorf("failed to encode template for %s: %w", c.path, err)
	}

	loaded := ReadJSON(c.store, map[string]json.RawMessage{})
	merged := mergeDocuments(tpl, loaded)

	if err := c.checkVersion(merged, tpl); err != nil {
		return err
	}

	c.dropMalformed(merged, tpl)

	var cfg T
	if err := fromObject(merged, &cfg); err != nil {
		debug.Log("config %s does not match the expected shape, using template: %s", c.path, err)
		cfg = clone(c.template)
	}
	normalizeDoc(&cfg)

	c.config = cfg
	c.initialized = true

	return WriteJSON(c.store, c.config)
}

// dropMalformed replaces every top-level field of merged that does not
// decode into T with the template field, or removes it if the template has
// none. The other fields survive.
func (c *ConfigFile[T]) dropMalformed(merged, tpl map[string]json.RawMessage) {
	for _, k := range set.SortedKeys(merged) {
		var probe T
		err := fromObject(map[string]json.RawMessage{k: merged[k]}, &probe)
		if err == nil {
			continue
		}

		if def, found := tpl[k]; found {
			debug.Log("config %s: field %q is malformed, using the default: %s", c.path, k, err)
			merged[k] = def

			continue
		}

		debug.Log("config %s: dropping malformed field %q: %s", c.path, k, err)
		delete(merged, k)
	}
}

// checkVersion bumps the merged version to the template version and runs
// the migration hook, if any. Migrating is left to the hook.
func (c *ConfigFile[T]) checkVersion(merged, tpl map[string]json.RawMessage) error {
	want := rawString(tpl["version"])
	have := rawString(merged["version"])
	if have == want {
		return nil
	}

	from, ferr := semver.ParseTolerant(have)
	to, terr := semver.ParseTolerant(want)
	switch {
	case ferr != nil || terr != nil:
		debug.Log("WARNING: config %s has version %q, expected %q", c.path, have, want)
	case from.LT(to):
		debug.Log("WARNING: config %s has older version %s, upgrading to %s", c.path, from, to)
	default:
		debug.Log("WARNING: config %s has newer version %s than supported %s", c.path, from, to)
	}

	if c.Migrate != nil {
		if err := c.Migrate(merged, from, to); err != nil {
			return fmt.Errorf("failed to migrate %s from %q to %q: %w", c.path, have, want, err)
		}
	}

	merged["version"] = tpl["version"]

	return nil
}

// Save writes the in-memory document to disk.
func (c *ConfigFile[T]) Save() error {
	return WriteJSON(c.store, c.config)
}

// Reload re-reads the document from disk, replacing the in-memory copy.
//
// Note: Unlike Init this does not merge with the template. Keys that only
// exist in the template are missing until the next Init.
func (c *ConfigFile[T]) Reload() {
	cfg := ReadJSON(c.store, clone(c.template))
	normalizeDoc(&cfg)
	c.config = cfg
}

// SetConfig replaces the in-memory document and saves it. Missing maps
// are created like on Init.
func (c *ConfigFile[T]) SetConfig(cfg T) error {
	c.config = cfg
	normalizeDoc(&c.config)

	return c.Save()
}

// mergeDocuments overlays loaded onto tpl. The settings objects are merged per key.
func mergeDocuments(tpl, loaded map[string]json.RawMessage) map[string]json.RawMessage {
	out := maps.Clone(tpl)
	if out == nil {
		out = make(map[string]json.RawMessage, len(loaded))
	}
	maps.Copy(out, loaded)

	settings := make(map[string]json.RawMessage)
	if err := json.Unmarshal(tpl["settings"], &settings); err != nil {
		debug.V(3).Log("template has no settings object: %s", err)
	}

	var ls map[string]json.RawMessage
	if raw, found := loaded["settings"]; found {
		if err := json.Unmarshal(raw, &ls); err != nil {
			debug.Log("ignoring malformed settings object: %s", err)
		}
	}
	if settings == nil {
		settings = make(map[string]json.RawMessage, len(ls))
	}
	maps.Copy(settings, ls)

	buf, err := json.Marshal(settings)
	if err == nil {
		out["settings"] = buf
	}

	return out
}

func normalizeDoc(v any) {
	if n, ok := v.(normalizer); ok {
		n.normalize()
	}
}

func toObject(v any) (map[string]json.RawMessage, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, err
	}

	return m, nil
}

func fromObject(m map[string]json.RawMessage, v any) error {
	buf, err := json.Marshal(m)
	if err != nil {
		return err
	}

	return json.Unmarshal(buf, v)
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s
}

// clone deep copies a JSON safe document.
func clone[T any](v T) T {
	var out T
	buf, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err := json.Unmarshal(buf, &out); err != nil {
		return v
	}

	return out
}
