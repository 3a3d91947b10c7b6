package smx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEdgeCaseUnicodeKeys tests keys and values outside of ASCII.
func TestEdgeCaseUnicodeKeys(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	require.NoError(t, m.Set("ui.größe", "groß", ScopeLocal, ""))
	require.NoError(t, m.Set("ui.emoji", "🚀", ScopeLocal, ""))

	v, found := m.Get("ui.größe", ScopeAuto, "")
	assert.True(t, found)
	assert.Equal(t, "groß", v)

	v, _ = m.Get("ui.emoji", ScopeAuto, "")
	assert.Equal(t, "🚀", v)

	require.ErrorIs(t, m.Set("ui.\u00a0nbsp", "x", ScopeLocal, ""), ErrInvalidKey)
}

// TestEdgeCaseVeryLongValues tests handling of very long settings values.
func TestEdgeCaseVeryLongValues(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	longValue := strings.Repeat("x", 10000)

	cf := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
	require.NoError(t, cf.Init())
	cf.Config().Settings["section.key"] = NewPlain(longValue)
	require.NoError(t, cf.Save())

	cf.Reload()
	assert.Equal(t, longValue, cf.Config().Settings["section.key"].Value())
}

// TestEdgeCaseVeryDeepKeys tests keys with many components.
func TestEdgeCaseVeryDeepKeys(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	parts := make([]string, 0, 20)
	for i := range 20 {
		parts = append(parts, fmt.Sprintf("level%d", i))
	}
	key := strings.Join(parts, ".")

	require.NoError(t, m.Set(key, "deep", ScopeLocal, ""))
	v, found := m.Get(key, ScopeAuto, "")
	assert.True(t, found)
	assert.Equal(t, "deep", v)

	keys, err := m.List("level0.**", ScopeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	keys, err = m.List("level0.*", ScopeAuto, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

// TestEdgeCaseEmptyValues tests that empty values are stored and shadow lower scopes.
func TestEdgeCaseEmptyValues(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	require.NoError(t, m.Set("git.remote", "origin", ScopeGlobal, ""))
	require.NoError(t, m.Set("git.remote", "", ScopeLocal, ""))
	require.NoError(t, m.Set("git.ignore", []string{}, ScopeLocal, ""))

	v, found := m.Get("git.remote", ScopeAuto, "")
	assert.True(t, found)
	assert.Empty(t, v)

	v, found = m.Get("git.ignore", ScopeAuto, "")
	assert.True(t, found)
	assert.Equal(t, []any{}, v)
}

// TestEdgeCaseSpecialCharactersInValues tests values that need JSON escaping.
func TestEdgeCaseSpecialCharactersInValues(t *testing.T) {
	t.Parallel()

	testCases := []string{
		`C:\Program Files\Editor\edit.exe`,
		`say "hi"`,
		"tab\tseparated",
		"line\nbreak",
		"<html>&amp;</html>",
		"// not a comment",
		"/* not a comment */",
		"trailing,",
	}

	td := t.TempDir()
	cf := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
	require.NoError(t, cf.Init())

	for i, v := range testCases {
		cf.Config().Settings[fmt.Sprintf("special.k%d", i)] = NewPlain(v)
	}
	require.NoError(t, cf.Save())

	fresh := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
	require.NoError(t, fresh.Init())
	for i, want := range testCases {
		assert.Equal(t, want, fresh.Config().Settings[fmt.Sprintf("special.k%d", i)].Value(), want)
	}
}

// TestEdgeCaseCommentHandling tests that hand written comments are accepted and dropped on write.
func TestEdgeCaseCommentHandling(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	content := `{
  // machine wide settings
  "settings": {
    "editor.files.tool": "vim", // my editor
    /* block
       comment */
    "git.autosync": true,
  },
}`
	require.NoError(t, os.WriteFile(filepath.Join(td, ConfigFileName), []byte(content), 0o600))

	cf := NewConfigFile(FolderPath(td), DefaultGlobalConfig(), nil)
	require.NoError(t, cf.Init())
	assert.Equal(t, "vim", cf.Config().Settings[EditorFilesTool].Value())
	assert.Equal(t, true, cf.Config().Settings[GitAutoSyncKey].Value())

	buf, err := os.ReadFile(cf.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(buf), "my editor")
}

// TestEdgeCaseNumericValues tests that numbers keep their value.
func TestEdgeCaseNumericValues(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t)

	for key, value := range map[string]any{
		"num.int":      42,
		"num.negative": -7,
		"num.float":    3.25,
		"num.big":      int64(1 << 52),
		"num.zero":     0,
	} {
		require.NoError(t, m.Set(key, value, ScopeLocal, ""))
	}

	h := NewHandler(m.Handler().Fs())
	h.Storage = store.factory
	require.NoError(t, h.LoadLocalConfig(testRepo))
	m2 := NewManager(h, nil)

	for key, want := range map[string]float64{
		"num.int":      42,
		"num.negative": -7,
		"num.float":    3.25,
		"num.big":      1 << 52,
		"num.zero":     0,
	} {
		v, found := m2.Get(key, ScopeLocal, "")
		assert.True(t, found, key)
		assert.InDelta(t, want, v, 0, key)
	}
}

// TestEdgeCaseBooleanValues tests that booleans and boolean looking strings differ.
func TestEdgeCaseBooleanValues(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	g := NewGitSettings(m)

	require.NoError(t, m.Set(GitAutoSyncKey, true, ScopeLocal, ""))
	assert.True(t, g.AutoSync.Get())

	require.ErrorIs(t, m.Set(GitAutoSyncKey, "false", ScopeLocal, ""), ErrValidation)
	assert.True(t, g.AutoSync.Get())

	require.NoError(t, m.Set(GitAutoSyncKey, ParseValue("false"), ScopeLocal, ""))
	assert.False(t, g.AutoSync.Get())
}

// TestEdgeCaseLargeConfigFile tests a config with many settings.
func TestEdgeCaseLargeConfigFile(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	cf := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
	require.NoError(t, cf.Init())

	for i := range 1000 {
		cf.Config().Settings[fmt.Sprintf("bulk.key%04d", i)] = NewPlain(i)
	}
	require.NoError(t, cf.Save())

	fresh := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
	require.NoError(t, fresh.Init())
	assert.Len(t, fresh.Config().Settings, 1000)
	assert.InDelta(t, 999.0, fresh.Config().Settings["bulk.key0999"].Value(), 0)
}

// TestEdgeCaseDuplicateKeys tests that the last duplicate key in a file wins.
func TestEdgeCaseDuplicateKeys(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	content := `{"settings": {"git.branch": "first", "git.branch": "second"}}`
	require.NoError(t, os.WriteFile(filepath.Join(td, ConfigFileName), []byte(content), 0o600))

	cf := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
	require.NoError(t, cf.Init())
	assert.Equal(t, "second", cf.Config().Settings[GitBranchKey].Value())
}

// TestEdgeCaseCaseSensitivity tests that keys are case sensitive.
func TestEdgeCaseCaseSensitivity(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	require.NoError(t, m.Set("Editor.Theme", "dark", ScopeLocal, ""))
	require.NoError(t, m.Set("editor.theme", "light", ScopeLocal, ""))

	v, _ := m.Get("Editor.Theme", ScopeAuto, "")
	assert.Equal(t, "dark", v)
	v, _ = m.Get("editor.theme", ScopeAuto, "")
	assert.Equal(t, "light", v)
	assert.Equal(t, []string{"Editor", "editor"}, m.Sections())
}

// TestEdgeCaseLeadingTrailingWhitespace tests that whitespace in values is kept.
func TestEdgeCaseLeadingTrailingWhitespace(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	require.NoError(t, m.Set("ui.prompt", "  > ", ScopeLocal, ""))
	v, _ := m.Get("ui.prompt", ScopeAuto, "")
	assert.Equal(t, "  > ", v)

	assert.Equal(t, "  padded  ", ParseValue("  padded  "))
	assert.InDelta(t, 5.0, ParseValue(" 5 "), 0)
}

// TestEdgeCaseNullBytes tests values containing NUL characters.
func TestEdgeCaseNullBytes(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	cf := NewConfigFile(FolderPath(td), DefaultLocalConfig(), nil)
	require.NoError(t, cf.Init())

	cf.Config().Settings["bin.value"] = NewPlain("a\x00b")
	require.NoError(t, cf.Save())

	cf.Reload()
	assert.Equal(t, "a\x00b", cf.Config().Settings["bin.value"].Value())
}
