package compose

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RootManifest is a compose.yaml naming, in link order, every component
// manifest that participates in a composition: transport/middleware
// first, capability and service components after. Both the compose and
// serve commands read the same root manifest, so a composition validated
// offline is exactly the one serve links at startup.
type RootManifest struct {
	Components []string `yaml:"components"`
}

// LoadRootManifest reads a root compose.yaml, resolving each listed
// component path relative to the root manifest's own directory.
func LoadRootManifest(path string) (*RootManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compose: reading root manifest %s: %w", path, err)
	}
	var root RootManifest
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("compose: parsing root manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	resolved := make([]string, len(root.Components))
	for i, c := range root.Components {
		if filepath.IsAbs(c) {
			resolved[i] = c
		} else {
			resolved[i] = filepath.Join(dir, c)
		}
	}
	root.Components = resolved
	return &root, nil
}
