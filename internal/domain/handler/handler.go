// Package handler defines the C5/C6 middleware chain contract: the
// MessageContext every handler sees, and the Handler interface each
// capability/filter/terminal handler implements. Grounded on this
// codebase's interceptor-chain idiom, generalized from action-keyed
// dispatch to typed MCP request dispatch.
package handler

import (
	"context"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/identity"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// HTTPContext carries the inbound request's transport-level facts a
// handler may need but that aren't part of the JSON-RPC payload: the
// request path as received (filter middleware normalizes it and keys
// routing config off the result). The negotiated protocol version is
// carried on MessageContext, not here.
type HTTPContext struct {
	Path string
}

// ClientStream is the narrow lent capability a handler needs to emit
// server-initiated notifications mid-request: only SendMessage, never the
// full FrameWriter (which also exposes Flush/Reset, owned exclusively by
// the transport for the lifetime of the request).
type ClientStream interface {
	Send(msg mcp.ServerMessage) error
}

// frameWriterStream adapts *mcp.FrameWriter to ClientStream.
type frameWriterStream struct{ fw *mcp.FrameWriter }

func (s frameWriterStream) Send(msg mcp.ServerMessage) error { return mcp.SendMessage(s.fw, msg) }

// NewClientStream wraps fw as the ClientStream lent to handlers for one
// request's duration.
func NewClientStream(fw *mcp.FrameWriter) ClientStream { return frameWriterStream{fw: fw} }

// MessageContext is the value passed to every handler in the chain.
// ClientStream is non-nil only when the transport has an open streaming
// reply (SSE); handlers must not attempt to stream when it is nil.
type MessageContext struct {
	ClientStream    ClientStream
	ProtocolVersion string
	Session         *session.Session
	Identity        *identity.Identity
	Frame           mcp.MessageFrame
	HTTPContext     *HTTPContext
}

// CanStream reports whether it is safe to emit a server-initiated
// notification through mc.ClientStream right now.
func (mc *MessageContext) CanStream() bool { return mc.ClientStream != nil }

// Outcome is a handler's answer to a request: either a result, or an
// error, or (via a nil *Outcome from Handle) "not mine, forward
// downstream" — the Go rendering of the chain contract's
// Option<Result<ServerResult, ErrorCode>>.
type Outcome struct {
	Result  mcp.ServerResult
	Err     mcp.ErrorCode
	IsError bool
}

// Answer builds an Outcome that answers a request with a result.
func Answer(result mcp.ServerResult) *Outcome { return &Outcome{Result: result} }

// AnswerError builds an Outcome that answers a request with an error.
func AnswerError(err mcp.ErrorCode) *Outcome { return &Outcome{Err: err, IsError: true} }

// Handler is one link in the dispatch chain. Handle returns (nil, nil) to
// forward a request downstream unanswered; a non-nil Outcome answers it.
// The returned error is a Go-level failure (store I/O, context
// cancellation) distinct from a protocol-level Outcome.Err — it is the
// caller's job to map it to an Internal ErrorCode and an HTTP 500.
type Handler interface {
	Handle(ctx context.Context, mc *MessageContext, req mcp.ClientRequest) (*Outcome, error)
	HandleNotification(ctx context.Context, mc *MessageContext, n mcp.ClientNotification) error
}

// HandlerFunc adapts a plain function to a request-only Handler, forwarding
// every notification downstream unexamined. Mirrors the
// ActionInterceptorFunc/http.HandlerFunc idiom.
type HandlerFunc func(ctx context.Context, mc *MessageContext, req mcp.ClientRequest) (*Outcome, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, mc *MessageContext, req mcp.ClientRequest) (*Outcome, error) {
	return f(ctx, mc, req)
}

// HandleNotification is a no-op: HandlerFunc never answers notifications.
func (f HandlerFunc) HandleNotification(ctx context.Context, mc *MessageContext, n mcp.ClientNotification) error {
	return nil
}

var _ Handler = HandlerFunc(nil)

// Chain links an ordered sequence of Handlers, dispatching a request down
// the list until one answers or the list is exhausted. Composition (see
// internal/compose) is responsible for appending the terminal handler so
// the list is never exhausted without an answer.
type Chain struct {
	handlers []Handler
}

// NewChain builds a Chain over handlers, dispatched in order.
func NewChain(handlers ...Handler) *Chain {
	return &Chain{handlers: handlers}
}

// Handle runs req through the chain, returning the first non-nil
// Outcome. It is itself a Handler, so chains can be nested (e.g. the
// filter middleware's downstream is a sub-chain of capability handlers).
func (c *Chain) Handle(ctx context.Context, mc *MessageContext, req mcp.ClientRequest) (*Outcome, error) {
	for _, h := range c.handlers {
		out, err := h.Handle(ctx, mc, req)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
	return nil, nil
}

// HandleNotification runs n through every handler in the chain, in order;
// a handler error is logged by the caller but does not halt the chain —
// notifications are best-effort per the chain contract.
func (c *Chain) HandleNotification(ctx context.Context, mc *MessageContext, n mcp.ClientNotification) error {
	var firstErr error
	for _, h := range c.handlers {
		if err := h.HandleNotification(ctx, mc, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ Handler = (*Chain)(nil)
