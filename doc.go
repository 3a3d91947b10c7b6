// Package smx implements the configuration core of the smx script manager.
// smx tracks a folder of scripts and dotfiles, keeps it in git and stores
// its settings in JSON files at several scopes.
//
// # Config files
//
// There are two config files, both named .smx.json by default:
//
//   - `global` - the machine wide config in the user home (or SMX_GLOBAL_CONFIG).
//     It records the path of the local repo.
//   - `local` - the config inside the script repo. It holds editors, targets,
//     units and repo settings.
//
// A ConfigFile is seeded from a template. Init merges the file on disk
// with the template, keeping every setting found on disk, and writes the
// result back so the file always has the current shape. Missing and
// malformed files behave like a file holding the template.
//
// # Scopes
//
// Settings are flat dotted keys stored at one of these scopes, in order
// of precedence:
//
//   - `target` - settings of the active target
//   - `local` - settings of the local config
//   - `global` - settings of the global config
//
// Reading without a scope returns the value of the first scope where
// the key is present:
//
//	h := smx.NewHandler(nil)
//	if err := h.LoadGlobalConfig(""); err != nil { ... }
//	if err := h.LoadLocalConfig(""); err != nil { ... }
//	m := smx.NewManager(h, smx.NewValidator())
//	v, found := m.Get("git.branch", smx.ScopeAuto, "")
//
// Writes name the scope. ScopeAuto writes and deletes always go to the
// local scope, never to global machine state:
//
//	err := m.Set("git.branch", "main", smx.ScopeLocal, "")
//
// A write only returns nil after the owning file was saved.
//
// # Per OS values
//
// A setting may hold a default plus per operating system overrides:
//
//	{"editor.files.tool": {"value": "code", "windows": "code.cmd"}}
//
// Get resolves it for runtime.GOOS. SetForOS writes an override and turns
// a plain value into such an object.
//
// # Validation
//
// Definitions restrict the types a key accepts:
//
//	v := smx.NewValidator(smx.Definition{
//		Key:   "git.ignore",
//		Types: []smx.ValueType{smx.TypeString},
//		Array: smx.ArrayForce,
//	})
//
// Keys without a definition accept any value.
//
// # Sections
//
// Sections group related keys behind typed fields:
//
//	editor := smx.NewEditorSettings(m)
//	tool := editor.FilesTool.Get()
//
// # Checking files
//
// Loading never fails on a broken file, it is replaced by the defaults.
// CheckGlobal and CheckLocal report schema problems of the stored text
// before that happens.
//
// # Error Handling
//
// Use errors.Is to detect common error categories:
//
//	if err := m.Set("git.autosync", "yes", smx.ScopeAuto, ""); err != nil {
//		if errors.Is(err, smx.ErrValidation) {
//			// handle invalid value
//		}
//	}
//
// Failed writes are reported as ErrWriteConfig or ErrCreateConfigDir.
//
// # Known limitations
//
// * Config files are not locked, concurrent processes may overwrite each other
// * Schema migrations are not implemented, see ConfigFile.Migrate
package smx
