package capability

import (
	"context"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// PromptsHandler answers prompts/list and prompts/get from a
// PromptProvider, and forwards every other request downstream.
type PromptsHandler struct {
	provider PromptProvider
	limits   mcp.StreamLimits
}

// NewPromptsHandler wraps provider behind the prompts/list|get method subset.
func NewPromptsHandler(provider PromptProvider) *PromptsHandler {
	return &PromptsHandler{provider: provider, limits: mcp.DefaultStreamLimits()}
}

func (h *PromptsHandler) Handle(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest) (*handler.Outcome, error) {
	switch req.Kind {
	case mcp.ReqPromptsList:
		params, err := mcp.DecodeListParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		prompts, next, err := h.provider.ListPrompts(ctx, params.Cursor)
		if err != nil {
			return nil, err
		}
		result, err := mcp.NewPromptsListResult(prompts, next)
		if err != nil {
			return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
		}
		return handler.Answer(result), nil

	case mcp.ReqPromptsGet:
		params, err := mcp.DecodePromptsGetParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		description, messages, err := h.provider.GetPrompt(ctx, params.Name, params.Arguments)
		if err != nil {
			return nil, err
		}
		result, err := mcp.NewGetPromptResult(description, messages, h.limits)
		if err != nil {
			return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
		}
		return handler.Answer(result), nil

	default:
		return nil, nil
	}
}

func (h *PromptsHandler) HandleNotification(ctx context.Context, mc *handler.MessageContext, n mcp.ClientNotification) error {
	return nil
}

var _ handler.Handler = (*PromptsHandler)(nil)
