// Package capability implements C5: the tools/resources/prompts
// middleware, each answering its own fixed method subset and forwarding
// everything else downstream. Grounded on the "answer fixed subset,
// forward rest" contract of the tools/resources/prompts component
// templates this runtime's capability model is based on. StaticToolRegistry
// delegates its storage to internal/domain/upstream's ToolCache rather than
// keeping its own index.
package capability

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/upstream"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// ToolProvider answers tools/list and tools/call for a registered set of
// tools. A composition's capability-wrapping step (§4.5) binds one or more
// user components implementing ToolProvider behind a ToolsHandler.
type ToolProvider interface {
	ListTools(ctx context.Context, cursor *string) ([]mcp.Tool, *string, error)
	CallTool(ctx context.Context, name string, arguments json.RawMessage) ([]mcp.ContentBlock, bool, error)
}

// ResourceProvider answers resources/list, resources/read,
// resources/templates/list, and resources/subscribe|unsubscribe.
type ResourceProvider interface {
	ListResources(ctx context.Context, cursor *string) ([]mcp.Resource, *string, error)
	ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error)
	ListResourceTemplates(ctx context.Context, cursor *string) ([]mcp.ResourceTemplate, *string, error)
	Subscribe(ctx context.Context, uri string) error
	Unsubscribe(ctx context.Context, uri string) error
}

// PromptProvider answers prompts/list and prompts/get.
type PromptProvider interface {
	ListPrompts(ctx context.Context, cursor *string) ([]mcp.Prompt, *string, error)
	GetPrompt(ctx context.Context, name string, arguments map[string]string) (*string, []mcp.PromptMessage, error)
}

// staticRegistryUpstreamID is the synthetic upstream.ToolCache key a
// StaticToolRegistry stores its tools under: one composed capability
// component, one cache entry, rather than the multi-upstream aggregation
// ToolCache was built for.
const staticRegistryUpstreamID = "static"

// StaticToolRegistry is a thread-safe, in-process ToolProvider. Tool
// metadata lives in an upstream.ToolCache (reusing its name index and
// MaxToolsPerUpstream/MaxTotalTools limits instead of duplicating them);
// only the per-tool call dispatch table, something ToolCache has no
// concept of, is kept alongside it.
type StaticToolRegistry struct {
	mu      sync.Mutex
	cache   *upstream.ToolCache
	order   []string // registration order; SetToolsForUpstream replaces wholesale
	handler map[string]func(ctx context.Context, arguments json.RawMessage) ([]mcp.ContentBlock, bool, error)
}

// NewStaticToolRegistry builds an empty registry; register tools with
// Register before composing it into a ToolsHandler.
func NewStaticToolRegistry() *StaticToolRegistry {
	return &StaticToolRegistry{
		cache:   upstream.NewToolCache(),
		handler: make(map[string]func(context.Context, json.RawMessage) ([]mcp.ContentBlock, bool, error)),
	}
}

// Register adds a tool and its call handler to the registry.
func (r *StaticToolRegistry) Register(tool mcp.Tool, call func(ctx context.Context, arguments json.RawMessage) ([]mcp.ContentBlock, bool, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handler[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.handler[tool.Name] = call

	var description string
	if tool.Description != nil {
		description = *tool.Description
	}

	tools := make([]*upstream.DiscoveredTool, 0, len(r.order))
	for _, name := range r.order {
		if name == tool.Name {
			tools = append(tools, &upstream.DiscoveredTool{
				Name:         tool.Name,
				Description:  description,
				InputSchema:  tool.InputSchema,
				UpstreamID:   staticRegistryUpstreamID,
				UpstreamName: staticRegistryUpstreamID,
				DiscoveredAt: time.Now(),
			})
			continue
		}
		if existing, ok := r.cache.GetTool(name); ok {
			tools = append(tools, existing)
		}
	}
	r.cache.SetToolsForUpstream(staticRegistryUpstreamID, tools)
}

// ListTools returns every registered tool. Cursor-based pagination is not
// implemented: the registry always returns its full list in one page,
// matching the common case of a modestly sized, in-process tool set.
func (r *StaticToolRegistry) ListTools(ctx context.Context, cursor *string) ([]mcp.Tool, *string, error) {
	discovered := r.cache.GetToolsByUpstream(staticRegistryUpstreamID)
	out := make([]mcp.Tool, 0, len(discovered))
	for _, d := range discovered {
		t := mcp.Tool{Name: d.Name, InputSchema: d.InputSchema}
		if d.Description != "" {
			desc := d.Description
			t.Description = &desc
		}
		out = append(out, t)
	}
	return out, nil, nil
}

// CallTool dispatches to the registered handler for name. The bool return
// signals whether the handler itself reported a tool-level error ("isError"
// in the CallToolResult), distinct from a Go-level error which the caller
// maps to Internal.
func (r *StaticToolRegistry) CallTool(ctx context.Context, name string, arguments json.RawMessage) ([]mcp.ContentBlock, bool, error) {
	r.mu.Lock()
	call, ok := r.handler[name]
	r.mu.Unlock()
	if !ok {
		return []mcp.ContentBlock{mcp.NewTextBlock("tool not found: " + name)}, true, nil
	}
	return call(ctx, arguments)
}

var _ ToolProvider = (*StaticToolRegistry)(nil)
