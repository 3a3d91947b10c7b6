package smx

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlatformDefaultPaths tests that the default global config lives in the user home.
func TestPlatformDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("GOPASS_HOMEDIR", home)
	t.Setenv(GlobalConfigEnv, "")

	h := NewHandler(nil)
	require.NoError(t, h.LoadGlobalConfig(""))

	assert.True(t, filepath.IsAbs(h.GlobalFile().Path()), "global config path should be absolute")
	assert.Equal(t, filepath.Join(home, ConfigFileName), h.GlobalFile().Path())
	assert.FileExists(t, h.GlobalFile().Path())
}

// TestPlatformResolvesRuntimeOS tests that a new manager resolves OS values for the running system.
func TestPlatformResolvesRuntimeOS(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	m := NewManager(h, nil)
	assert.Equal(t, runtime.GOOS, m.GOOS)

	h.LocalFile().Config().Settings[EditorFilesTool] = NewOS(OSValue{
		Value: "default",
		Overrides: map[string]any{
			runtime.GOOS: "native",
		},
	})

	v, found := m.Get(EditorFilesTool, ScopeAuto, "")
	assert.True(t, found)
	assert.Equal(t, "native", v)

	// an empty GOOS falls back to the running system
	m.GOOS = ""
	v, _ = m.Get(EditorFilesTool, ScopeAuto, "")
	assert.Equal(t, "native", v)

	require.NoError(t, m.SetForOS(EditorFilesTool, "changed", "", ScopeLocal, ""))
	s, _ := m.GetSetting(EditorFilesTool, ScopeLocal, "")
	assert.Equal(t, "changed", s.Resolve(runtime.GOOS))
	assert.Equal(t, "default", s.Value())
}

// TestPlatformPathSeparators tests that folder paths are joined with the platform separator.
func TestPlatformPathSeparators(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	repo := filepath.Join(td, "scripts", "repo")

	h := NewHandler(nil)
	require.NoError(t, h.LoadGlobalConfig(filepath.Join(td, "home")))
	require.NoError(t, h.SetLocalPath(repo))
	require.NoError(t, h.LoadLocalConfig(""))

	assert.Equal(t, filepath.Join(repo, ConfigFileName), h.LocalFile().Path())
	assert.Equal(t, repo, h.LocalRoot())

	m := NewManager(h, nil)
	targets := NewTargets(m)
	_, err := targets.Add("laptop", "")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(repo, "laptop"))

	require.NoError(t, m.Set(TargetFolderKey, filepath.ToSlash(filepath.Join("machines", "laptop")), ScopeTarget, "laptop"))
	p, err := targets.Folder("laptop")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "machines", "laptop"), p)
}

// TestPlatformLineEndings tests that config files with CRLF line endings load.
func TestPlatformLineEndings(t *testing.T) {
	t.Parallel()

	for name, eol := range map[string]string{
		"unix":    "\n",
		"windows": "\r\n",
		"mac":     "\r",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			td := t.TempDir()
			content := "{" + eol + `  "settings": {` + eol + `    "git.branch": "dev"` + eol + "  }" + eol + "}" + eol
			require.NoError(t, os.WriteFile(filepath.Join(td, ConfigFileName), []byte(content), 0o644))

			cf := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
			require.NoError(t, cf.Init())
			assert.Equal(t, "dev", cf.Config().Settings[GitBranchKey].Value())
		})
	}
}

// TestPlatformFilePermissions tests that written config files are private to the user.
func TestPlatformFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("File permission test not applicable on Windows")
	}

	t.Parallel()

	td := t.TempDir()
	dir := filepath.Join(td, "new")

	cf := NewConfigFile(FolderPath(dir), DefaultGlobalConfig(), nil)
	require.NoError(t, cf.Init())

	info, err := os.Stat(cf.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	info, err = os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm()&0o700)
}

// TestPlatformSymlinks tests that a symlinked config file is read through the link.
func TestPlatformSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Symlink test not reliable on Windows without privileges")
	}

	t.Parallel()

	td := t.TempDir()
	target := filepath.Join(td, "real.json")
	link := filepath.Join(td, "link.json")

	require.NoError(t, os.WriteFile(target, []byte(`{"path": "/repo"}`), 0o600))
	require.NoError(t, os.Symlink(target, link))

	cf := NewConfigFile(FilePath(link), DefaultGlobalConfig(), nil)
	require.NoError(t, cf.Init())
	assert.Equal(t, "/repo", cf.Config().Path)
}

// TestPlatformRelativePaths tests that the recorded local path is absolute.
func TestPlatformRelativePaths(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	h := NewHandler(nil)
	require.NoError(t, h.LoadGlobalConfig(filepath.Join(td, "home")))
	require.NoError(t, h.SetLocalPath("relative/repo"))

	p := h.GlobalFile().Config().Path
	assert.True(t, filepath.IsAbs(p))
	assert.True(t, strings.HasSuffix(p, filepath.Join("relative", "repo")), p)
}

// TestPlatformEnvironmentVariables tests the global config override variable.
func TestPlatformEnvironmentVariables(t *testing.T) {
	td := t.TempDir()
	t.Setenv(GlobalConfigEnv, filepath.Join(td, "custom.json"))

	h := NewHandler(nil)
	require.NoError(t, h.LoadGlobalConfig(""))
	assert.Equal(t, filepath.Join(td, "custom.json"), h.GlobalFile().Path())
	assert.FileExists(t, filepath.Join(td, "custom.json"))
}
