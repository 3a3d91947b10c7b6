package smx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopasspw/gopass/pkg/appdir"
	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/spf13/afero"
)

// GlobalConfigEnv names the environment variable overriding the global config location.
const GlobalConfigEnv = "SMX_GLOBAL_CONFIG"

// Handler owns the global and the local config file of a process.
//
// It is the only place config files are created so there is exactly one
// in-memory copy per file. The local config location defaults to the
// folder recorded in the global config.
//
// Fields:
// - GlobalConfig: Global config file or folder, "" for the default location
// - Storage: Creates the Storage backing each config file
//
// Usage:
//
//	h := NewHandler(nil)
//	if err := h.LoadGlobalConfig(""); err != nil { ... }
//	if err := h.LoadLocalConfig(""); err != nil { ... }
//	h.SetTargetID("laptop")
type Handler struct {
	global   *ConfigFile[GlobalConfig]
	local    *ConfigFile[LocalConfig]
	targetID string
	fs       afero.Fs

	GlobalConfig string
	Storage      StorageFactory
}

// NewHandler creates a Handler persisting to fsys. A nil fsys means the
// OS filesystem. Nothing is loaded yet.
func NewHandler(fsys afero.Fs) *Handler {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Handler{
		fs:      fsys,
		Storage: NewStorageFactory(fsys),
	}
}

// String implements fmt.Stringer for debugging.
func (h *Handler) String() string {
	var global, local string
	if h.global != nil {
		global = h.global.Path()
	}
	if h.local != nil {
		local = h.local.Path()
	}

	return fmt.Sprintf("Handler{Global: %s - Local: %s - Target: %s}", global, local, h.targetID)
}

// Fs returns the filesystem the handler persists to.
func (h *Handler) Fs() afero.Fs {
	return h.fs
}

// GlobalFile returns the global config file or nil if it is not loaded.
func (h *Handler) GlobalFile() *ConfigFile[GlobalConfig] {
	return h.global
}

// LocalFile returns the local config file or nil if it is not loaded.
func (h *Handler) LocalFile() *ConfigFile[LocalConfig] {
	return h.local
}

// TargetID returns the active target id, if any.
func (h *Handler) TargetID() string {
	return h.targetID
}

// SetTargetID sets the active target id.
func (h *Handler) SetTargetID(id string) {
	h.targetID = id
}

// LocalRoot returns the folder holding the local config file.
func (h *Handler) LocalRoot() string {
	if h.local == nil {
		return ""
	}

	return filepath.Dir(h.local.Path())
}

// GlobalConfigPath returns where the global config is loaded from.
//
// Lookup Order:
// 1. path argument
// 2. Handler.GlobalConfig
// 3. SMX_GLOBAL_CONFIG
// 4. .smx.json in the user home
//
// Paths ending in .json are files, anything else is a folder.
func (h *Handler) GlobalConfigPath(path string) PathSpec {
	for _, p := range []string{
		path,
		h.GlobalConfig,
		os.Getenv(GlobalConfigEnv),
	} {
		if p != "" {
			return pathSpecFor(p)
		}
	}

	return FolderPath(appdir.UserHome())
}

// LoadGlobalConfig loads the global config, replacing a previously loaded one.
// See GlobalConfigPath for how an empty path is resolved.
func (h *Handler) LoadGlobalConfig(path string) error {
	spec := h.GlobalConfigPath(path)
	f := NewConfigFile(spec, DefaultGlobalConfig(), h.Storage)
	h.global = f

	debug.V(1).Log("loading global config from %s", f.Path())

	return f.Init()
}

// LoadLocalConfig loads the local config, replacing a previously loaded one.
// An empty path means the folder recorded in the global config.
func (h *Handler) LoadLocalConfig(path string) error {
	if path == "" {
		if h.global == nil {
			return fmt.Errorf("%w: global config is required to locate the local config", ErrScopeNotLoaded)
		}
		path = h.global.Config().Path
	}
	if path == "" {
		return fmt.Errorf("%w: no local path in global config %s", ErrScopeNotLoaded, h.global.Path())
	}

	f := NewConfigFile(pathSpecFor(path), DefaultLocalConfig(), h.Storage)
	h.local = f

	debug.V(1).Log("loading local config from %s", f.Path())

	return f.Init()
}

// SetLocalPath records path as this machine's local repo folder in the
// global config and saves it.
func (h *Handler) SetLocalPath(path string) error {
	if h.global == nil {
		return fmt.Errorf("%w: global", ErrScopeNotLoaded)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	h.global.Config().Path = abs

	return h.global.Save()
}
