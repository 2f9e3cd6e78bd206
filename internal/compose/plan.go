package compose

import "fmt"

// WiringError marks a composition failure rooted in the manifest graph
// itself — unsatisfied imports or an unrecognized component kind — as
// opposed to a plain I/O failure reading a manifest file. The compose
// command maps the two to different exit codes.
type WiringError struct{ msg string }

func (e *WiringError) Error() string { return e.msg }

// Plan is the validated, ordered wiring the compose CLI writes to its
// --output file: not a single linked binary (Go has no WASM-style
// component linker to produce one), but a description of a sound
// composition that Build can later replay against a live Registry.
type Plan struct {
	Middleware   []string          `yaml:"middleware" json:"middleware"`
	Capabilities []string          `yaml:"capabilities" json:"capabilities"`
	Services     map[string]string `yaml:"services,omitempty" json:"services,omitempty"`
}

// ValidateWiring runs steps 1-6 of the composition algorithm
// structurally, without instantiating any component: a CLI-time
// soundness check only needs a manifest's declared imports/exports, the
// same way a component-introspection tool validates a composition
// without ever executing a component.
func ValidateWiring(manifestPaths []string) (*Plan, error) {
	graph := NewPackageGraph()
	unsatisfied := NewUnsatisfiedImports()

	ids := make([]PackageID, 0, len(manifestPaths))
	for _, path := range manifestPaths {
		m, err := LoadManifest(path)
		if err != nil {
			return nil, err
		}
		id := graph.Add(m)
		ids = append(ids, id)
		unsatisfied.AddComponentImports(string(id), m.NonWASIImports())
	}

	plan := &Plan{Services: map[string]string{}}
	for _, id := range ids {
		m := graph.Manifest(id)
		for _, imp := range m.NonWASIImports() {
			if imp == IfaceSessionStore || imp == IfaceIdentity {
				unsatisfied.MarkSatisfied(string(id), imp)
			}
		}
		switch m.Kind {
		case KindMiddleware:
			plan.Middleware = append(plan.Middleware, m.Name)
			unsatisfied.MarkSatisfied(string(id), IfaceIncomingHandler)
		case KindToolProvider, KindResourceProvider, KindPromptProvider:
			plan.Capabilities = append(plan.Capabilities, m.Name)
		case KindService:
			for _, exp := range m.Exports {
				plan.Services[exp] = m.Name
			}
		default:
			return nil, &WiringError{msg: fmt.Sprintf("compose: component %q: unknown kind %q", m.Name, m.Kind)}
		}
	}

	if unsatisfied.HasUnsatisfied() {
		return nil, &WiringError{msg: unsatisfied.ErrorMessage()}
	}
	return plan, nil
}
