package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/identity"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// AuthMode selects the pre-handler auth gate's behavior, per §4.1's
// "Auth gate (pre-handler)" passage.
type AuthMode string

const (
	AuthPublic AuthMode = "public"
	AuthOAuth  AuthMode = "oauth"
)

const maxRequestBodyBytes = 10 << 20 // 10 MiB; a single JSON-RPC envelope never needs more.

var acceptedProtocolVersions = map[string]struct{}{
	"2025-06-18": {},
	"2025-03-26": {},
	"2024-11-05": {},
}

func isAcceptedProtocolVersion(v string) bool {
	_, ok := acceptedProtocolVersions[v]
	return ok
}

// Transport wires the C5/C6 handler chain to HTTP: POST / for request
// dispatch, GET /.well-known/oauth-protected-resource[/mcp] for the OAuth
// 2.0 Protected Resource Metadata document, and DELETE / for session
// termination. It owns the request's session/auth/dispatch pipeline
// (handler.go) and exposes the routed http.Handler (Routes, below).
type Transport struct {
	Chain  handler.Handler
	Store  session.KVStore
	Bucket string

	Decoder   *identity.Decoder // nil unless AuthMode == AuthOAuth
	Authorize identity.Authorizer
	AuthMode  AuthMode

	SessionsEnabled   bool
	DisableSSE        bool
	AllowedOrigins    map[string]struct{}
	PublicResourceURL string
	Issuer            string

	ServerName         string
	ServerVersion      string
	ServerCapabilities json.RawMessage

	Metrics *Metrics
	Logger  *slog.Logger
}

// NewTransport builds a Transport over chain with sensible defaults:
// public auth mode, sessions disabled, SSE streaming enabled, and an
// AllowAll authorizer. Sessions default to disabled (SESSION_ENABLED
// defaults to false); callers that want session lifecycle set
// SessionsEnabled explicitly.
func NewTransport(chain handler.Handler, store session.KVStore, bucket string, reg prometheus.Registerer, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		Chain:              chain,
		Store:              store,
		Bucket:             bucket,
		Authorize:          identity.AllowAll,
		AuthMode:           AuthPublic,
		ServerCapabilities: json.RawMessage(`{"tools":{},"resources":{},"prompts":{},"logging":{}}`),
		Metrics:            NewMetrics(reg),
		Logger:             logger,
	}
}

// Routes builds the routed http.Handler, wrapping it in the request-ID and
// metrics middleware.
func (t *Transport) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", t.handleRoot)
	mux.HandleFunc("/.well-known/oauth-protected-resource", t.handlePRM)
	mux.HandleFunc("/.well-known/oauth-protected-resource/mcp", t.handlePRM)
	mux.Handle("/health", HealthHandler())
	mux.Handle("/metrics", MetricsHandler())

	var h http.Handler = mux
	h = MetricsMiddleware(t.Metrics)(h)
	h = RequestIDMiddleware(t.Logger)(h)
	return h
}

func (t *Transport) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		t.handlePost(w, r)
	case http.MethodDelete:
		t.handleDelete(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePRM answers the RFC 9728 Protected Resource Metadata document.
func (t *Transport) handlePRM(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	authServers := []string{}
	if t.Issuer != "" {
		authServers = append(authServers, t.Issuer)
	}
	doc := map[string]any{
		"resource":                 t.PublicResourceURL,
		"authorization_servers":    authServers,
		"bearer_methods_supported": []string{"header"},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

// handleDelete terminates the session named by the mcp-session-id header.
func (t *Transport) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !t.SessionsEnabled {
		http.Error(w, "sessions are disabled", http.StatusMethodNotAllowed)
		return
	}
	id := r.Header.Get("mcp-session-id")
	if id == "" {
		http.Error(w, "missing mcp-session-id header", http.StatusBadRequest)
		return
	}
	sess := session.New(t.Store, t.Bucket, id)
	if err := sess.Terminate(r.Context(), "client requested termination"); err != nil {
		LoggerFromContext(r.Context()).Error("terminate session", "session_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	t.Metrics.ActiveSessions.Dec()
	w.WriteHeader(http.StatusOK)
}

func (t *Transport) wwwAuthenticate() string {
	return `Bearer error="invalid_token", resource_metadata="` + t.PublicResourceURL + `"`
}

// writeFailure maps a *handler.Failure to its HTTP status and writes a
// JSON-RPC error envelope as the response body, per §7's failure model.
// id is the request's JSON-RPC id when one was recovered by the time the
// failure occurred (the zero RequestID marshals to "id: null" otherwise).
// sessionNotFound distinguishes the two FailSession outcomes (404 vs 400).
func (t *Transport) writeFailure(w http.ResponseWriter, id mcp.RequestID, f *handler.Failure, sessionNotFound bool) {
	if f.Kind == handler.FailUnauthorized {
		w.Header().Set("WWW-Authenticate", f.AuthHdr)
	}
	status := f.HTTPStatus(sessionNotFound)
	body, err := mcp.NewErrorMessage(id, f.ErrorCode()).Encode()
	if err != nil {
		http.Error(w, f.Msg, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
