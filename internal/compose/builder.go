package compose

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelgate/internal/adapter/outbound/kv"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/capability"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/terminal"
)

// Artifact is composition's single linked output: a chain ready to hand
// to a transport, and the session store it was wired against.
type Artifact struct {
	Chain handler.Handler
	Store session.KVStore
}

// Builder runs the leaves-first linking algorithm over a set of
// component manifests.
type Builder struct {
	Registry *Registry

	// Store, if non-nil, is used as-is and step 7's runtime detection is
	// skipped. Leave nil to have Build construct one from the
	// session-store service manifest (or Runtime's default) instead.
	Store session.KVStore

	// Runtime names the target runtime for step 7's variant selection,
	// consulted only when no manifest pins kv_backend explicitly.
	Runtime string
}

// NewBuilder builds a Builder over reg.
func NewBuilder(reg *Registry) *Builder {
	return &Builder{Registry: reg}
}

// Build runs steps 1-7 over the manifest files at manifestPaths, in the
// order middleware should run (outermost first), and returns the linked
// Artifact. A validation/wiring failure is returned as a *WiringError,
// distinct from a plain I/O error, so a CLI caller can map the two to
// different exit codes.
func (b *Builder) Build(manifestPaths []string) (*Artifact, error) {
	graph := NewPackageGraph()
	unsatisfied := NewUnsatisfiedImports()

	// Step 1 (load) + step 2 (inspect, filter WASI imports).
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

	// Step 3: service discovery. session-store/identity are supplied by
	// the host process directly (Builder.Store, and an identity decoder
	// wired at the transport layer) rather than by a separate component
	// exporting them, so any component importing either is satisfied
	// unconditionally once a service manifest or the builder itself
	// stands in for that interface.
	for _, id := range ids {
		m := graph.Manifest(id)
		for _, imp := range m.NonWASIImports() {
			if imp == IfaceSessionStore || imp == IfaceIdentity {
				unsatisfied.MarkSatisfied(string(id), imp)
			}
		}
	}

	// Step 4: capability wrapping.
	var capabilityHandlers []handler.Handler
	var middlewareIDs []PackageID
	for _, id := range ids {
		m := graph.Manifest(id)
		switch m.Kind {
		case KindToolProvider:
			f, err := b.Registry.toolProviderFor(m.Name)
			if err != nil {
				return nil, err
			}
			provider, err := f()
			if err != nil {
				return nil, fmt.Errorf("compose: building tool provider %q: %w", m.Name, err)
			}
			capabilityHandlers = append(capabilityHandlers, capability.NewToolsHandler(provider))
		case KindResourceProvider:
			f, err := b.Registry.resourceProviderFor(m.Name)
			if err != nil {
				return nil, err
			}
			provider, err := f()
			if err != nil {
				return nil, fmt.Errorf("compose: building resource provider %q: %w", m.Name, err)
			}
			capabilityHandlers = append(capabilityHandlers, capability.NewResourcesHandler(provider))
		case KindPromptProvider:
			f, err := b.Registry.promptProviderFor(m.Name)
			if err != nil {
				return nil, err
			}
			provider, err := f()
			if err != nil {
				return nil, fmt.Errorf("compose: building prompt provider %q: %w", m.Name, err)
			}
			capabilityHandlers = append(capabilityHandlers, capability.NewPromptsHandler(provider))
		case KindMiddleware:
			middlewareIDs = append(middlewareIDs, id)
		case KindService:
			// No handler.Handler of its own; it only satisfies step 3.
		default:
			return nil, &WiringError{msg: fmt.Sprintf("compose: component %q: unknown kind %q", m.Name, m.Kind)}
		}
	}

	// Step 5: chain linking. The terminal handler always answers, so the
	// capability handlers plus terminal form the downstream every
	// middleware (in declared order, outermost first) forwards to, and
	// are also appended to the flat top-level chain so an unclaimed
	// request that a middleware forwards (rather than answers directly)
	// still reaches them via Chain's own iteration.
	downstream := make([]handler.Handler, 0, len(capabilityHandlers)+1)
	downstream = append(downstream, capabilityHandlers...)
	downstream = append(downstream, terminal.New())
	downstreamChain := handler.NewChain(downstream...)

	wrapped := make([]handler.Handler, 0, len(middlewareIDs))
	for _, id := range middlewareIDs {
		m := graph.Manifest(id)
		f, err := b.Registry.middlewareFor(m.Name)
		if err != nil {
			return nil, err
		}
		h, err := f(downstreamChain)
		if err != nil {
			return nil, fmt.Errorf("compose: building middleware %q: %w", m.Name, err)
		}
		wrapped = append(wrapped, h)
		unsatisfied.MarkSatisfied(string(id), IfaceIncomingHandler)
	}

	// Step 6: import validation.
	if unsatisfied.HasUnsatisfied() {
		return nil, &WiringError{msg: unsatisfied.ErrorMessage()}
	}

	full := make([]handler.Handler, 0, len(wrapped)+len(downstream))
	full = append(full, wrapped...)
	full = append(full, downstream...)
	chain := handler.NewChain(full...)

	// Step 7: runtime detection.
	store, err := b.resolveStore(graph, ids)
	if err != nil {
		return nil, err
	}

	return &Artifact{Chain: chain, Store: store}, nil
}

// resolveStore implements step 7: if the caller already pinned a store,
// use it as-is; otherwise look for a service manifest exporting
// session-store and honor its kv_backend/kv_dsn, falling back to
// ResolveKVVariant(b.Runtime) when none is declared.
func (b *Builder) resolveStore(graph *PackageGraph, ids []PackageID) (session.KVStore, error) {
	if b.Store != nil {
		return b.Store, nil
	}

	backend, dsn := "", ""
	for _, id := range ids {
		m := graph.Manifest(id)
		if m.Kind == KindService && m.Exported(IfaceSessionStore) {
			backend, dsn = m.KVBackend, m.KVDSN
			break
		}
	}
	if backend == "" {
		backend = ResolveKVVariant(b.Runtime)
	}

	switch backend {
	case "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("compose: sqlite session store requires kv_dsn")
		}
		return kv.OpenSQLiteStore(dsn)
	case "memory":
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("compose: unknown kv_backend %q", backend)
	}
}
