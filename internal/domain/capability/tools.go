package capability

import (
	"context"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// ToolsHandler answers tools/list and tools/call from a ToolProvider and
// forwards every other request downstream.
type ToolsHandler struct {
	provider ToolProvider
	limits   mcp.StreamLimits
}

// NewToolsHandler wraps provider behind the tools/list|call method subset.
func NewToolsHandler(provider ToolProvider) *ToolsHandler {
	return &ToolsHandler{provider: provider, limits: mcp.DefaultStreamLimits()}
}

func (h *ToolsHandler) Handle(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest) (*handler.Outcome, error) {
	switch req.Kind {
	case mcp.ReqToolsList:
		params, err := mcp.DecodeListParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		tools, next, err := h.provider.ListTools(ctx, params.Cursor)
		if err != nil {
			return nil, err
		}
		result, err := mcp.NewToolsListResult(tools, next)
		if err != nil {
			return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
		}
		return handler.Answer(result), nil

	case mcp.ReqToolsCall:
		params, err := mcp.DecodeToolsCallParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		content, isError, err := h.provider.CallTool(ctx, params.Name, params.Arguments)
		if err != nil {
			return nil, err
		}
		result, err := mcp.NewCallToolResult(content, isError, h.limits)
		if err != nil {
			return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
		}
		return handler.Answer(result), nil

	default:
		return nil, nil
	}
}

func (h *ToolsHandler) HandleNotification(ctx context.Context, mc *handler.MessageContext, n mcp.ClientNotification) error {
	return nil
}

var _ handler.Handler = (*ToolsHandler)(nil)
