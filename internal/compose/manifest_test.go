package compose

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "component.yaml")
	content := `
name: echo-tools
kind: tool-provider
imports:
  - session-store
  - wasi:io/streams
exports:
  - tools
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Name != "echo-tools" || m.Kind != KindToolProvider {
		t.Errorf("parsed manifest = %+v", m)
	}
	if !m.Exported("tools") {
		t.Error("expected tools export")
	}
}

func TestManifestNonWASIImportsFiltersWASIPrefix(t *testing.T) {
	m := &Manifest{Imports: []string{"session-store", "wasi:io/streams", "wasi:clocks/monotonic-clock"}}
	got := m.NonWASIImports()
	if len(got) != 1 || got[0] != "session-store" {
		t.Errorf("NonWASIImports() = %v, want [session-store]", got)
	}
}

func TestLoadManifestRejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "component.yaml")
	if err := os.WriteFile(path, []byte("kind: tool-provider\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected an error for a manifest with no name")
	}
}
