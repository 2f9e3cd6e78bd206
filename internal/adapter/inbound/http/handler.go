package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/identity"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// handlePost implements §4.1's POST / pipeline: origin validation,
// protocol-version header check, body parse, the auth gate, session
// lifecycle, and dispatch into the handler chain (with ping/
// logging/setLevel/initialize handled locally as transport-owned
// methods).
func (t *Transport) handlePost(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	if !originAllowed(r, t.AllowedOrigins) {
		t.writeFailure(w, mcp.RequestID{}, handler.NewProtocolFailure("origin not allowed"), false)
		return
	}

	version := r.Header.Get("mcp-protocol-version")
	if !isAcceptedProtocolVersion(version) {
		t.writeFailure(w, mcp.RequestID{}, handler.NewProtocolFailure("missing or unsupported mcp-protocol-version header"), false)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		t.writeFailure(w, mcp.RequestID{}, handler.NewValidationFailure("reading request body: "+err.Error()), false)
		return
	}

	msg, err := mcp.ParseClientMessage(body)
	if err != nil {
		t.writeFailure(w, mcp.RequestID{}, handler.NewValidationFailure("parsing request: "+err.Error()), false)
		return
	}

	ident, hasIdentity, failure := t.authenticate(r)
	if failure != nil {
		t.writeFailure(w, msg.ID, failure, false)
		return
	}

	isInitialize := msg.Kind == mcp.ClientMsgRequest && msg.Request.Kind == mcp.ReqInitialize

	sess, sessionNotFound, failure := t.openSession(r.Context(), w, r, isInitialize, ident, hasIdentity)
	if failure != nil {
		t.writeFailure(w, msg.ID, failure, sessionNotFound)
		return
	}

	if t.AuthMode == AuthOAuth && msg.Kind == mcp.ClientMsgRequest {
		authorize := t.Authorize
		if authorize == nil {
			authorize = identity.AllowAll
		}
		var claims identity.SessionClaims
		if sess != nil {
			claims = sess
		}
		if !authorize(msg.Request, ident.Claims, claims) {
			t.writeFailure(w, msg.ID, handler.NewForbiddenFailure("request not authorized"), false)
			return
		}
	}

	mc := &handler.MessageContext{
		ProtocolVersion: version,
		Session:         sess,
		HTTPContext:     &handler.HTTPContext{Path: r.URL.Path},
	}
	if hasIdentity {
		idCopy := ident
		mc.Identity = &idCopy
	}

	streaming := !t.DisableSSE
	frame := mcp.PlainJSONFrame()
	if streaming {
		frame = mcp.SSEFrame()
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	mc.Frame = frame

	fw := mcp.NewFrameWriter(w, frame)
	if streaming {
		mc.ClientStream = handler.NewClientStream(fw)
	}

	switch msg.Kind {
	case mcp.ClientMsgNotification:
		if err := t.Chain.HandleNotification(r.Context(), mc, msg.Notification); err != nil {
			logger.Warn("notification dispatch error", "kind", msg.Notification.Kind, "error", err)
		}
		if !streaming {
			w.WriteHeader(http.StatusOK)
		}
		return
	case mcp.ClientMsgResult, mcp.ClientMsgError:
		// Answers a server-initiated request; nothing to reply with.
		if !streaming {
			w.WriteHeader(http.StatusOK)
		}
		return
	}

	outcome := t.dispatch(r.Context(), mc, msg.Request, version)

	var serverMsg mcp.ServerMessage
	if outcome.IsError {
		serverMsg = mcp.NewErrorMessage(msg.ID, outcome.Err)
	} else {
		serverMsg = mcp.NewResultMessage(msg.ID, outcome.Result)
	}
	if err := mcp.SendMessage(fw, serverMsg); err != nil {
		logger.Error("writing response message", "error", err)
		return
	}
	if err := fw.Flush(); err != nil {
		logger.Error("flushing response", "error", err)
	}
}

// authenticate implements the auth gate: a no-op in AuthPublic mode, bearer
// extraction and decode in AuthOAuth mode.
func (t *Transport) authenticate(r *http.Request) (identity.Identity, bool, *handler.Failure) {
	if t.AuthMode != AuthOAuth {
		return identity.Identity{}, false, nil
	}
	token, ok := identity.ExtractBearerToken(r.Header.Get("Authorization"))
	if !ok {
		return identity.Identity{}, false, handler.NewUnauthorizedFailure("missing or malformed bearer token", t.wwwAuthenticate())
	}
	id, err := t.Decoder.Decode([]byte(token))
	if err != nil {
		return identity.Identity{}, false, handler.NewUnauthorizedFailure("invalid token", t.wwwAuthenticate())
	}
	return id, true, nil
}

// openSession implements §4.1's "Session lifecycle on POST": mint on
// initialize, otherwise require and open an existing, non-terminated
// session. Returns a nil *session.Session (with nil failure) when sessions
// are disabled entirely.
func (t *Transport) openSession(ctx context.Context, w http.ResponseWriter, r *http.Request, isInitialize bool, ident identity.Identity, hasIdentity bool) (*session.Session, bool, *handler.Failure) {
	if !t.SessionsEnabled {
		return nil, false, nil
	}

	if isInitialize {
		id, err := session.GenerateSessionID()
		if err != nil {
			return nil, false, handler.NewInternalFailure("generating session id: " + err.Error())
		}
		sess := session.New(t.Store, t.Bucket, id)
		if err := sess.Set(ctx, "created", session.BoolValue(true)); err != nil {
			return nil, false, handler.NewIoFailure("creating session: " + err.Error())
		}
		if hasIdentity {
			if err := sess.BindIdentity(ctx, ident.Claims); err != nil {
				return nil, false, handler.NewInternalFailure("binding identity to session: " + err.Error())
			}
		}
		w.Header().Set("mcp-session-id", id)
		t.Metrics.ActiveSessions.Inc()
		return sess, false, nil
	}

	id := r.Header.Get("mcp-session-id")
	if id == "" {
		return nil, false, handler.NewValidationFailure("missing mcp-session-id header")
	}
	sess, err := session.Open(ctx, t.Store, t.Bucket, id)
	if err != nil {
		if errors.Is(err, session.ErrNoSuchSession) {
			return nil, true, handler.NewSessionFailure("no such session")
		}
		return nil, false, handler.NewIoFailure("opening session: " + err.Error())
	}
	terminated, err := sess.IsTerminated(ctx)
	if err != nil {
		return nil, false, handler.NewIoFailure("checking session state: " + err.Error())
	}
	if terminated {
		return nil, true, handler.NewSessionFailure("session terminated")
	}
	return sess, false, nil
}

// dispatch answers transport-owned methods locally (ping, logging/setLevel,
// initialize) and forwards everything else into the handler chain, mapping
// an exhausted chain (no handler answered) to MethodNotFound — the outcome
// the terminal handler is expected to already produce once composition
// (internal/compose) appends it, kept here as a defensive fallback.
func (t *Transport) dispatch(ctx context.Context, mc *handler.MessageContext, req mcp.ClientRequest, version string) *handler.Outcome {
	switch req.Kind {
	case mcp.ReqPing:
		t.Metrics.DispatchOutcome.WithLabelValues("answered").Inc()
		return handler.Answer(mcp.NewEmptyResult())
	case mcp.ReqLoggingSetLevel:
		t.Metrics.DispatchOutcome.WithLabelValues("answered").Inc()
		return handler.Answer(mcp.NewEmptyResult())
	case mcp.ReqInitialize:
		result, err := mcp.NewInitializeResult(mcp.InitializeResult{
			ProtocolVersion: version,
			Capabilities:    t.ServerCapabilities,
			ServerInfo:      mcp.ClientInfo{Name: t.ServerName, Version: t.ServerVersion},
		})
		if err != nil {
			t.Metrics.DispatchOutcome.WithLabelValues("error").Inc()
			return handler.AnswerError(mcp.NewInternalError("building initialize result: " + err.Error()))
		}
		t.Metrics.DispatchOutcome.WithLabelValues("answered").Inc()
		return handler.Answer(result)
	}

	out, err := t.Chain.Handle(ctx, mc, req)
	if err != nil {
		LoggerFromContext(ctx).Error("chain dispatch error", "method", req.Kind, "error", err)
		t.Metrics.DispatchOutcome.WithLabelValues("error").Inc()
		return handler.AnswerError(mcp.NewInternalError("internal error"))
	}
	if out == nil {
		t.Metrics.DispatchOutcome.WithLabelValues("forwarded_to_terminal").Inc()
		return handler.AnswerError(mcp.NewMethodNotFound(string(req.Kind)))
	}
	t.Metrics.DispatchOutcome.WithLabelValues("answered").Inc()
	return out
}
