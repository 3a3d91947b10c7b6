package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/smx-cli/smx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--global-config", home}, args...))

	err := cmd.Execute()

	return buf.String(), err
}

func TestCommandsRequireInit(t *testing.T) {
	t.Parallel()

	home := t.TempDir()

	_, err := run(t, home, "settings", "get", "git.branch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smx init")
}

func TestCommandsSettings(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	repo := filepath.Join(t.TempDir(), "scripts")

	out, err := run(t, home, "init", repo)
	require.NoError(t, err)
	assert.Equal(t, "Initialized "+filepath.Join(repo, smx.ConfigFileName)+"\n", out)

	_, err = run(t, home, "settings", "set", "git.branch", "dev")
	require.NoError(t, err)
	_, err = run(t, home, "settings", "set", "ui.columns", "120")
	require.NoError(t, err)

	out, err = run(t, home, "settings", "get", "git.branch")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = run(t, home, "settings", "get", "ui.columns")
	require.NoError(t, err)
	assert.Equal(t, "120\n", out)

	_, err = run(t, home, "settings", "get", "does.not.exist")
	require.Error(t, err)

	_, err = run(t, home, "settings", "set", "-s", "nowhere", "git.branch", "x")
	require.ErrorIs(t, err, smx.ErrInvalidScope)

	_, err = run(t, home, "settings", "delete", "ui.columns")
	require.NoError(t, err)
	_, err = run(t, home, "settings", "get", "ui.columns")
	require.Error(t, err)
}

func TestCommandsTargets(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	repo := filepath.Join(t.TempDir(), "scripts")

	_, err := run(t, home, "init", repo)
	require.NoError(t, err)
	_, err = run(t, home, "settings", "set", "git.branch", "dev")
	require.NoError(t, err)

	out, err := run(t, home, "target", "add", "laptop", "Laptop")
	require.NoError(t, err)
	assert.Equal(t, "Added target laptop\n", out)

	out, err = run(t, home, "target", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* laptop\tLaptop")

	// the default target is active without --target
	_, err = run(t, home, "settings", "set", "-s", "target", "git.branch", "feature")
	require.NoError(t, err)

	out, err = run(t, home, "settings", "get", "git.branch")
	require.NoError(t, err)
	assert.Equal(t, "feature\n", out)

	out, err = run(t, home, "settings", "get", "-s", "local", "git.branch")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = run(t, home, "settings", "list", "git.**", "--origin")
	require.NoError(t, err)
	assert.Contains(t, out, "git.branch=feature (target)\n")

	_, err = run(t, home, "target", "remove", "laptop")
	require.ErrorIs(t, err, smx.ErrDefaultTarget)
}

func TestCommandsConfigShow(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	repo := filepath.Join(t.TempDir(), "scripts")

	_, err := run(t, home, "init", repo)
	require.NoError(t, err)

	out, err := run(t, home, "config", "show", "-s", "global", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "path: "+repo)
	assert.Contains(t, out, "version: "+smx.GlobalConfigVersion)

	out, err = run(t, home, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "`+smx.LocalConfigVersion+`"`)

	_, err = run(t, home, "config", "show", "-f", "toml")
	require.Error(t, err)

	out, err = run(t, home, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "global: "+filepath.Join(home, smx.ConfigFileName))
	assert.Contains(t, out, "local: "+filepath.Join(repo, smx.ConfigFileName))
}

func TestCommandsConfigCheck(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	repo := filepath.Join(t.TempDir(), "scripts")

	_, err := run(t, home, "init", repo)
	require.NoError(t, err)

	out, err := run(t, home, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(repo, smx.ConfigFileName)+": ok\n")

	local := filepath.Join(repo, smx.ConfigFileName)
	require.NoError(t, os.WriteFile(local, []byte(`{"version": "1.0.0", "units": {"x": {"id": "x", "type": "svn"}}}`), 0o600))

	out, err = run(t, home, "config", "check")
	require.Error(t, err)
	assert.Contains(t, out, local+": units/x/type: ")
}

func TestCommandsConfigCheckFirstRun(t *testing.T) {
	t.Parallel()

	home := t.TempDir()

	out, err := run(t, home, "config", "check")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, smx.ConfigFileName)+": not created yet\n", out)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   any
		want string
	}{
		{in: "plain", want: "plain"},
		{in: float64(3), want: "3"},
		{in: true, want: "true"},
		{in: nil, want: "null"},
		{in: []any{"a", float64(1)}, want: `["a",1]`},
	} {
		assert.Equal(t, tc.want, formatValue(tc.in))
	}
}
