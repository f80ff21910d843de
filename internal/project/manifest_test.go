package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "meddle.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.mdl"), []byte("test:: i64 { ret 0; }"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	path := writeManifest(t, dir, `
[package]
name = "demo"
sources = ["main.mdl"]

[build]
named_mir = true
debug = true
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "demo" {
		t.Fatalf("Name = %q, want demo", m.Name)
	}
	if !m.Options.NamedMIR || !m.Options.Debug || m.Options.Time {
		t.Fatalf("Options = %+v", m.Options)
	}
	if len(m.Sources) != 1 || m.Sources[0] != filepath.Join(dir, "main.mdl") {
		t.Fatalf("Sources = %v", m.Sources)
	}
}

func TestLoadManifestMissingPackage(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[build]
debug = true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing [package]")
	}
}

func TestLoadManifestMissingSources(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[package]
name = "demo"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty [package].sources")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `[package]
name = "demo"
sources = ["a.mdl"]
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: path=%q ok=%v err=%v", path, ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("Find found %q, want manifest under %q", path, root)
	}
}

func TestExpandSourcesDirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, name := range []string{"a.mdl", "b.mdl", "ignore.txt"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte(""), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	standalone := filepath.Join(dir, "main.mdl")
	if err := os.WriteFile(standalone, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	files, err := ExpandSources([]string{sub, standalone})
	if err != nil {
		t.Fatalf("ExpandSources: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files (2 from dir + 1 standalone), got %v", files)
	}
}
