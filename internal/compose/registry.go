package compose

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/capability"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
)

// MiddlewareFactory builds a middleware handler.Handler given the
// downstream handler it should forward to once it doesn't answer a
// request itself, satisfying step 5's "next handler" import.
type MiddlewareFactory func(downstream handler.Handler) (handler.Handler, error)

// ToolProviderFactory, ResourceProviderFactory, and PromptProviderFactory
// build the raw capability providers step 4 auto-wraps in the matching
// C5 middleware.
type ToolProviderFactory func() (capability.ToolProvider, error)
type ResourceProviderFactory func() (capability.ResourceProvider, error)
type PromptProviderFactory func() (capability.PromptProvider, error)

// Registry maps a manifest's declared component name to the Go
// constructor that provides its behavior — the in-process stand-in for
// "loading the component file" a WASM-native composer would do.
type Registry struct {
	middleware        map[string]MiddlewareFactory
	toolProviders      map[string]ToolProviderFactory
	resourceProviders  map[string]ResourceProviderFactory
	promptProviders    map[string]PromptProviderFactory
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		middleware:        make(map[string]MiddlewareFactory),
		toolProviders:      make(map[string]ToolProviderFactory),
		resourceProviders:  make(map[string]ResourceProviderFactory),
		promptProviders:    make(map[string]PromptProviderFactory),
	}
}

// RegisterMiddleware registers a middleware component's constructor.
func (r *Registry) RegisterMiddleware(name string, f MiddlewareFactory) {
	r.middleware[name] = f
}

// RegisterToolProvider registers a tool-provider component's constructor.
func (r *Registry) RegisterToolProvider(name string, f ToolProviderFactory) {
	r.toolProviders[name] = f
}

// RegisterResourceProvider registers a resource-provider component's
// constructor.
func (r *Registry) RegisterResourceProvider(name string, f ResourceProviderFactory) {
	r.resourceProviders[name] = f
}

// RegisterPromptProvider registers a prompt-provider component's
// constructor.
func (r *Registry) RegisterPromptProvider(name string, f PromptProviderFactory) {
	r.promptProviders[name] = f
}

func (r *Registry) middlewareFor(name string) (MiddlewareFactory, error) {
	f, ok := r.middleware[name]
	if !ok {
		return nil, fmt.Errorf("compose: no registered middleware component %q", name)
	}
	return f, nil
}

func (r *Registry) toolProviderFor(name string) (ToolProviderFactory, error) {
	f, ok := r.toolProviders[name]
	if !ok {
		return nil, fmt.Errorf("compose: no registered tool-provider component %q", name)
	}
	return f, nil
}

func (r *Registry) resourceProviderFor(name string) (ResourceProviderFactory, error) {
	f, ok := r.resourceProviders[name]
	if !ok {
		return nil, fmt.Errorf("compose: no registered resource-provider component %q", name)
	}
	return f, nil
}

func (r *Registry) promptProviderFor(name string) (PromptProviderFactory, error) {
	f, ok := r.promptProviders[name]
	if !ok {
		return nil, fmt.Errorf("compose: no registered prompt-provider component %q", name)
	}
	return f, nil
}
