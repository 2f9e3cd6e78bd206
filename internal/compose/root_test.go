package compose

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRootManifestResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "components")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	rootPath := filepath.Join(dir, "compose.yaml")
	content := "components:\n  - components/echo-tools.yaml\n  - /abs/other.yaml\n"
	if err := os.WriteFile(rootPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := LoadRootManifest(rootPath)
	if err != nil {
		t.Fatalf("LoadRootManifest() error = %v", err)
	}
	want := []string{filepath.Join(dir, "components", "echo-tools.yaml"), "/abs/other.yaml"}
	if len(root.Components) != 2 || root.Components[0] != want[0] || root.Components[1] != want[1] {
		t.Errorf("Components = %v, want %v", root.Components, want)
	}
}
