// Package compose implements the composition builder: given a
// transport, a terminal handler, ordered middleware, service components
// (session store, identity), and user capability components, it links
// them into one handler.Chain by matching imports to exports over a
// small set of known interfaces.
//
// A WebAssembly Component Model composer operates on binaries,
// introspecting typed import/export sections via wasm-tools. Go has no
// binary component format with typed imports, so each component here
// is described by a YAML sidecar manifest
// (component.yaml) declaring a name, a kind, and the interfaces it
// imports/exports — close enough to a WASM component's type section
// that the same leaves-first linking algorithm applies unmodified. The
// manifest names a component; the behavior behind that name comes from
// a Registry entry the host process registers at startup, since Go has
// no safe dynamic-component-loading analogue to a WASM linker.
package compose

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind classifies a component manifest for the wrapping/linking steps.
type Kind string

const (
	KindMiddleware       Kind = "middleware"
	KindToolProvider     Kind = "tool-provider"
	KindResourceProvider Kind = "resource-provider"
	KindPromptProvider   Kind = "prompt-provider"
	KindService          Kind = "service"
)

// Known interface names the service-discovery and chain-linking steps
// recognize by name.
const (
	IfaceSessionStore    = "session-store"
	IfaceIdentity        = "identity"
	IfaceIncomingHandler = "incoming-handler"
	IfaceTools           = "tools"
	IfaceResources       = "resources"
	IfacePrompts         = "prompts"
)

// Manifest is one component's component.yaml: its name, kind, and
// import/export interface sets. KVBackend/KVDSN are only meaningful on
// the service manifest exporting "session-store".
type Manifest struct {
	Name      string   `yaml:"name"`
	Kind      Kind     `yaml:"kind"`
	Imports   []string `yaml:"imports"`
	Exports   []string `yaml:"exports"`
	KVBackend string   `yaml:"kv_backend,omitempty"`
	KVDSN     string   `yaml:"kv_dsn,omitempty"`
}

// LoadManifest reads and parses a component.yaml at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compose: reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("compose: parsing manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("compose: manifest %s: missing name", path)
	}
	return &m, nil
}

// NonWASIImports returns m's imports with WASI imports filtered out, the
// Go-port equivalent of import_validation.rs's "wasi:" prefix filter —
// WASI imports are a WebAssembly intrinsic this runtime never produces,
// but the filter is kept for parity with the ported algorithm and in
// case a manifest declares one defensively.
func (m *Manifest) NonWASIImports() []string {
	out := make([]string, 0, len(m.Imports))
	for _, imp := range m.Imports {
		if strings.HasPrefix(imp, "wasi:") {
			continue
		}
		out = append(out, imp)
	}
	return out
}

// Exported reports whether m declares name among its exports.
func (m *Manifest) Exported(name string) bool {
	for _, e := range m.Exports {
		if e == name {
			return true
		}
	}
	return false
}
