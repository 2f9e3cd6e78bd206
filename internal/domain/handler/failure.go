package handler

import (
	"net/http"

	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// FailureKind is the closed taxonomy of transport-level failures a request
// can fail with before or around dispatch. It is distinct from
// mcp.ErrorCode, which taxonomizes JSON-RPC-level protocol errors
// returned *inside* a successful HTTP response.
type FailureKind int

const (
	FailValidation FailureKind = iota
	FailUnauthorized
	FailForbidden
	FailProtocol
	FailSession
	FailIo
	FailInternal
)

// Failure pairs a FailureKind with a human-readable message and, for
// FailUnauthorized, the WWW-Authenticate header value to set on the
// response.
type Failure struct {
	Kind    FailureKind
	Msg     string
	AuthHdr string // only meaningful when Kind == FailUnauthorized
}

func (f *Failure) Error() string { return f.Msg }

// NewValidationFailure builds a FailValidation failure (malformed request:
// bad JSON, missing required header).
func NewValidationFailure(msg string) *Failure { return &Failure{Kind: FailValidation, Msg: msg} }

// NewUnauthorizedFailure builds a FailUnauthorized failure, carrying the
// WWW-Authenticate header value the caller must set on the response.
func NewUnauthorizedFailure(msg, authHdr string) *Failure {
	return &Failure{Kind: FailUnauthorized, Msg: msg, AuthHdr: authHdr}
}

// NewForbiddenFailure builds a FailForbidden failure (authenticated, but
// the authorizer predicate declined the request).
func NewForbiddenFailure(msg string) *Failure { return &Failure{Kind: FailForbidden, Msg: msg} }

// NewProtocolFailure builds a FailProtocol failure (unsupported or missing
// mcp-protocol-version, origin mismatch).
func NewProtocolFailure(msg string) *Failure { return &Failure{Kind: FailProtocol, Msg: msg} }

// NewSessionFailure builds a FailSession failure (no such session,
// terminated session reuse).
func NewSessionFailure(msg string) *Failure { return &Failure{Kind: FailSession, Msg: msg} }

// NewIoFailure builds a FailIo failure (store or stream I/O error).
func NewIoFailure(msg string) *Failure { return &Failure{Kind: FailIo, Msg: msg} }

// NewInternalFailure builds a FailInternal failure (anything else
// unexpected: half-bound session cleanup, encode failure).
func NewInternalFailure(msg string) *Failure { return &Failure{Kind: FailInternal, Msg: msg} }

// HTTPStatus maps a FailureKind to its HTTP status code
// (400/401/403/400/{404|400}/500/500). FailSession is
// context-dependent (404 for an unknown/terminated session, 400 for a
// missing mcp-session-id header); sessionNotFound selects between them.
// A store error while opening a session is a FailIo (500).
func (f *Failure) HTTPStatus(sessionNotFound bool) int {
	switch f.Kind {
	case FailValidation:
		return http.StatusBadRequest
	case FailUnauthorized:
		return http.StatusUnauthorized
	case FailForbidden:
		return http.StatusForbidden
	case FailProtocol:
		return http.StatusBadRequest
	case FailSession:
		if sessionNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case FailIo:
		return http.StatusInternalServerError
	case FailInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode maps a FailureKind to the JSON-RPC error-code wire variant a
// transport encodes in the response body alongside HTTPStatus. Auth and
// session failures have no standard JSON-RPC code, so they're carried in
// the reserved server-error range via NewServerError.
func (f *Failure) ErrorCode() mcp.ErrorCode {
	switch f.Kind {
	case FailValidation, FailProtocol:
		return mcp.NewInvalidRequest(f.Msg)
	case FailUnauthorized:
		return mcp.NewServerError(-32001, f.Msg)
	case FailForbidden:
		return mcp.NewServerError(-32003, f.Msg)
	case FailSession:
		return mcp.NewServerError(-32002, f.Msg)
	case FailIo, FailInternal:
		return mcp.NewInternalError(f.Msg)
	default:
		return mcp.NewInternalError(f.Msg)
	}
}
