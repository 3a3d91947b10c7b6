package smx

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/spf13/afero"
)

func benchManager(b *testing.B) *Manager {
	b.Helper()

	h := NewHandler(afero.NewMemMapFs())
	if err := h.LoadGlobalConfig("/home/bench"); err != nil {
		b.Fatal(err)
	}
	if err := h.SetLocalPath("/repo"); err != nil {
		b.Fatal(err)
	}
	if err := h.LoadLocalConfig(""); err != nil {
		b.Fatal(err)
	}

	m := NewManager(h, NewValidator(DefaultDefinitions()...))
	for i := range 100 {
		if err := m.Set(fmt.Sprintf("bench.key%d", i), strconv.Itoa(i), ScopeGlobal, ""); err != nil {
			b.Fatal(err)
		}
	}

	return m
}

func BenchmarkLoadConfig(b *testing.B) {
	fs := afero.NewMemMapFs()
	content := `{"settings": {"editor.files.tool": "vim", "git.branch": "main"}, "version": "1.0.0"}`

	if err := afero.WriteFile(fs, "/repo/.smx.json", []byte(content), 0o644); err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		cf := NewConfigFile(FolderPath("/repo"), DefaultLocalConfig(), NewStorageFactory(fs))
		if err := cf.Init(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	m := benchManager(b)

	for b.Loop() {
		if _, found := m.Get("bench.key50", ScopeAuto, ""); !found {
			b.Fatal("missing key")
		}
	}
}

func BenchmarkSet(b *testing.B) {
	m := benchManager(b)

	b.ResetTimer()

	for i := range b.N {
		if err := m.Set("bench.key50", strconv.Itoa(i), ScopeGlobal, ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkList(b *testing.B) {
	m := benchManager(b)

	for b.Loop() {
		if _, err := m.List("bench.*", ScopeAuto, ""); err != nil {
			b.Fatal(err)
		}
	}
}
