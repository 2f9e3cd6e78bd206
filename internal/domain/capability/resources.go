package capability

import (
	"context"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// ResourcesHandler answers resources/list, resources/read,
// resources/templates/list, resources/subscribe, and resources/unsubscribe
// from a ResourceProvider, and forwards every other request downstream.
type ResourcesHandler struct {
	provider ResourceProvider
	limits   mcp.StreamLimits
}

// NewResourcesHandler wraps provider behind the resources/* method subset.
func NewResourcesHandler(provider ResourceProvider) *ResourcesHandler {
	return &ResourcesHandler{provider: provider, limits: mcp.DefaultStreamLimits()}
}

func (h *ResourcesHandler) Handle(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest) (*handler.Outcome, error) {
	switch req.Kind {
	case mcp.ReqResourcesList:
		params, err := mcp.DecodeListParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		resources, next, err := h.provider.ListResources(ctx, params.Cursor)
		if err != nil {
			return nil, err
		}
		result, err := mcp.NewResourcesListResult(resources, next)
		if err != nil {
			return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
		}
		return handler.Answer(result), nil

	case mcp.ReqResourcesRead:
		params, err := mcp.DecodeResourcesReadParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		contents, err := h.provider.ReadResource(ctx, params.URI)
		if err != nil {
			return nil, err
		}
		result, err := mcp.NewResourcesReadResult(contents, h.limits)
		if err != nil {
			return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
		}
		return handler.Answer(result), nil

	case mcp.ReqResourcesTemplatesList:
		params, err := mcp.DecodeListParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		templates, next, err := h.provider.ListResourceTemplates(ctx, params.Cursor)
		if err != nil {
			return nil, err
		}
		result, err := mcp.NewResourceTemplatesListResult(templates, next)
		if err != nil {
			return handler.AnswerError(mcp.NewInternalError(err.Error())), nil
		}
		return handler.Answer(result), nil

	case mcp.ReqResourcesSubscribe:
		params, err := mcp.DecodeResourcesSubscribeParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		if err := h.provider.Subscribe(ctx, params.URI); err != nil {
			return nil, err
		}
		return handler.Answer(mcp.NewEmptyResult()), nil

	case mcp.ReqResourcesUnsubscribe:
		params, err := mcp.DecodeResourcesSubscribeParams(req)
		if err != nil {
			return handler.AnswerError(mcp.NewInvalidParams(err.Error())), nil
		}
		if err := h.provider.Unsubscribe(ctx, params.URI); err != nil {
			return nil, err
		}
		return handler.Answer(mcp.NewEmptyResult()), nil

	default:
		return nil, nil
	}
}

func (h *ResourcesHandler) HandleNotification(ctx context.Context, mc *handler.MessageContext, n mcp.ClientNotification) error {
	return nil
}

var _ handler.Handler = (*ResourcesHandler)(nil)
