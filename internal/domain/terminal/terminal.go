// Package terminal implements C4: the unique chain terminator that answers
// MethodNotFound for any request no earlier handler claimed. Grounded on
// the method-not-found component this runtime's chain model is based on:
// a method-name-from-variant switch and silent notification handling.
package terminal

import (
	"context"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// Handler is the terminal link: it never forwards, and composition fails
// if it is absent from a chain (internal/compose enforces this).
type Handler struct{}

// New returns the terminal handler.
func New() *Handler { return &Handler{} }

// Handle answers every request with MethodNotFound, naming the request's
// method in the error message.
func (h *Handler) Handle(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest) (*handler.Outcome, error) {
	return handler.AnswerError(mcp.NewMethodNotFound(string(req.Kind))), nil
}

// HandleNotification silently discards: there is no downstream to forward
// to, and notifications carry no response.
func (h *Handler) HandleNotification(ctx context.Context, mc *handler.MessageContext, n mcp.ClientNotification) error {
	return nil
}

var _ handler.Handler = (*Handler)(nil)
