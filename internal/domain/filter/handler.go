package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

const toolRegistryKey = "filter:tool_registry"

// ConfigLoader supplies the routing configs currently in effect, keyed by
// resource URI. A composition's capability-wrapping step (§4.5) binds this
// to whichever ResourceProvider publishes routing://config-shaped
// resources; tests can supply a closure directly.
type ConfigLoader func(ctx context.Context) (map[string]RoutingConfig, error)

// toolsListBody mirrors pkg/mcp's unexported tools/list wire shape so
// filter can decode a downstream ServerResult without pkg/mcp exposing an
// internal type.
type toolsListBody struct {
	Tools      []mcp.Tool `json:"tools"`
	NextCursor *string    `json:"nextCursor,omitempty"`
}

type toolRegistryCacheEntry struct {
	key     uint64
	allowed map[string]bool
}

// Handler implements C6: it sits above the tools capability handler in the
// chain, rewriting tools/list results against the aggregated routing
// config for the request path, and gating tools/call against the
// per-session registry that rewrite produced.
type Handler struct {
	downstream handler.Handler
	loadConfig ConfigLoader
	celEnv     *cel.Env

	mu    sync.Mutex
	cache map[string]toolRegistryCacheEntry // session ID -> last computed registry
}

// New builds a filter Handler. downstream is the rest of the chain
// (typically the tools capability handler followed by the terminal
// handler) that actually answers tools/list and tools/call once this
// handler has rewritten/gated them. downstream must end in a terminal
// handler so an unclaimed request always gets an Outcome; New's caller is
// expected to also place those same handler instances after this Handler
// in the top-level Chain, so that a tools/call this Handler allows (Handle
// returns nil, "forward") reaches them via the Chain's own iteration
// rather than only through this Handler's direct downstream reference
// (used solely to fetch the raw tools/list result to rewrite).
func New(downstream handler.Handler, loadConfig ConfigLoader) (*Handler, error) {
	env, err := ToolEnv()
	if err != nil {
		return nil, fmt.Errorf("filter: building CEL environment: %w", err)
	}
	return &Handler{
		downstream: downstream,
		loadConfig: loadConfig,
		celEnv:     env,
		cache:      make(map[string]toolRegistryCacheEntry),
	}, nil
}

func requestPath(mc *handler.MessageContext) string {
	if mc.HTTPContext == nil {
		return defaultPath
	}
	return NormalizePath(mc.HTTPContext.Path)
}

func (h *Handler) Handle(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest) (*handler.Outcome, error) {
	switch req.Kind {
	case mcp.ReqToolsList:
		return h.handleToolsList(ctx, mc, req)
	case mcp.ReqToolsCall:
		return h.handleToolsCall(ctx, mc, req)
	default:
		return nil, nil
	}
}

func (h *Handler) handleToolsList(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest) (*handler.Outcome, error) {
	out, err := h.downstream.Handle(ctx, mc, req)
	if err != nil {
		return nil, err
	}
	if out == nil || out.IsError {
		return out, nil
	}

	var body toolsListBody
	if err := unmarshalResult(out.Result, &body); err != nil {
		return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
	}

	configs, err := h.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	aggregated := Aggregate(configs)
	rule, hasRule := aggregated[requestPath(mc)]

	toolNames := make([]string, len(body.Tools))
	for i, t := range body.Tools {
		toolNames[i] = t.Name
	}
	cacheKey := RuleHash(rule) ^ namesHash(toolNames)

	var allowed map[string]bool
	if mc.Session != nil {
		if cached, ok := h.cachedRegistry(mc.Session.ID, cacheKey); ok {
			allowed = cached
		}
	}

	var filtered []mcp.Tool
	if allowed != nil {
		for _, t := range body.Tools {
			if allowed[t.Name] {
				filtered = append(filtered, t)
			}
		}
	} else if !hasRule {
		filtered = body.Tools
		allowed = make(map[string]bool, len(body.Tools))
		for _, t := range body.Tools {
			allowed[t.Name] = true
		}
	} else {
		allowed = make(map[string]bool, len(body.Tools))
		var prg cel.Program
		if rule.Expression != "" {
			prg, err = CompileExpression(h.celEnv, rule.Expression)
			if err != nil {
				return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
			}
		}
		for _, t := range body.Tools {
			meta := ParseToolMetadata(t)
			if !PassesWhitelist(t.Name, meta, rule.Whitelist) {
				continue
			}
			if IsBlacklisted(t.Name, rule.Blacklist) {
				continue
			}
			if !MatchesTagFilters(meta, rule.TagFilters) {
				continue
			}
			if prg != nil {
				ok, err := EvaluateExpression(prg, t.Name, meta.ComponentID, meta.Tags)
				if err != nil {
					return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
				}
				if !ok {
					continue
				}
			}
			filtered = append(filtered, t)
			allowed[t.Name] = true
		}
	}

	if err := h.storeToolRegistry(ctx, mc, cacheKey, allowed); err != nil {
		return nil, err
	}

	result, err := mcp.NewToolsListResult(filtered, body.NextCursor)
	if err != nil {
		return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
	}
	return handler.Answer(result), nil
}

func (h *Handler) handleToolsCall(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest) (*handler.Outcome, error) {
	if mc.Session == nil {
		return nil, nil
	}
	params, err := mcp.DecodeToolsCallParams(req)
	if err != nil {
		return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
	}
	allowed, err := h.loadToolRegistry(ctx, mc)
	if err != nil {
		return handler.AnswerError(mcp.NewMethodNotFound(string(req.Kind))), nil
	}
	if !allowed[params.Name] {
		return handler.AnswerError(mcp.NewMethodNotFound(string(req.Kind))), nil
	}
	return nil, nil
}

func (h *Handler) HandleNotification(ctx context.Context, mc *handler.MessageContext, n mcp.ClientNotification) error {
	return h.downstream.HandleNotification(ctx, mc, n)
}

func (h *Handler) cachedRegistry(sessionID string, key uint64) (map[string]bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.cache[sessionID]
	if !ok || entry.key != key {
		return nil, false
	}
	return entry.allowed, true
}

func (h *Handler) storeToolRegistry(ctx context.Context, mc *handler.MessageContext, cacheKey uint64, allowed map[string]bool) error {
	if mc.Session == nil {
		return nil
	}
	names := make([]string, 0, len(allowed))
	for name := range allowed {
		names = append(names, name)
	}
	v, err := session.JSONValue(names)
	if err != nil {
		return fmt.Errorf("filter: encoding tool registry: %w", err)
	}
	if err := mc.Session.Set(ctx, toolRegistryKey, v); err != nil {
		return fmt.Errorf("filter: storing tool registry: %w", err)
	}
	h.mu.Lock()
	h.cache[mc.Session.ID] = toolRegistryCacheEntry{key: cacheKey, allowed: allowed}
	h.mu.Unlock()
	return nil
}

func (h *Handler) loadToolRegistry(ctx context.Context, mc *handler.MessageContext) (map[string]bool, error) {
	v, ok, err := mc.Session.Get(ctx, toolRegistryKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("filter: tool registry not found in session")
	}
	var names []string
	if err := v.AsJSONVal(&names); err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	return allowed, nil
}

func unmarshalResult(result mcp.ServerResult, out interface{}) error {
	b, err := result.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

var _ handler.Handler = (*Handler)(nil)
