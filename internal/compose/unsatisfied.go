package compose

import "strings"

// UnsatisfiedImports tracks each component's remaining unwired imports
// during composition, ported directly from
// cli/src/commands/compose/inspection/import_validation.rs: the same
// accumulate-then-mark-satisfied shape and the same error message
// format, so a composition failure reads identically regardless of
// which runtime produced it.
type UnsatisfiedImports struct {
	imports map[string][]string
}

// NewUnsatisfiedImports builds an empty accumulator.
func NewUnsatisfiedImports() *UnsatisfiedImports {
	return &UnsatisfiedImports{imports: make(map[string][]string)}
}

// AddComponentImports records component's non-WASI imports. A component
// with no unsatisfied imports is simply never inserted.
func (u *UnsatisfiedImports) AddComponentImports(component string, imports []string) {
	if len(imports) == 0 {
		return
	}
	cp := make([]string, len(imports))
	copy(cp, imports)
	u.imports[component] = cp
}

// MarkSatisfied removes interface from component's unsatisfied list. A
// component with no imports left is removed entirely.
func (u *UnsatisfiedImports) MarkSatisfied(component, iface string) {
	imports, ok := u.imports[component]
	if !ok {
		return
	}
	out := imports[:0]
	for _, imp := range imports {
		if imp != iface {
			out = append(out, imp)
		}
	}
	if len(out) == 0 {
		delete(u.imports, component)
		return
	}
	u.imports[component] = out
}

// HasUnsatisfied reports whether any component still has an unwired
// import.
func (u *UnsatisfiedImports) HasUnsatisfied() bool {
	return len(u.imports) > 0
}

// ErrorMessage renders the same "Composition has unsatisfied imports:"
// report the original composer prints, naming every offending
// component/interface pair.
func (u *UnsatisfiedImports) ErrorMessage() string {
	var b strings.Builder
	b.WriteString("Composition has unsatisfied imports:\n")
	for component, imports := range u.imports {
		b.WriteString("  Component '")
		b.WriteString(component)
		b.WriteString("':\n")
		for _, imp := range imports {
			b.WriteString("    - ")
			b.WriteString(imp)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nThese imports were not wired during composition. ")
	b.WriteString("Check that you're wiring all required framework interfaces to user components.")
	return b.String()
}
