// Package stdio implements C7's stdio surface: a cooperative
// read-decode-dispatch-reply loop over stdin/stdout, framed with
// mcp.NewlineFrame(). Unlike the HTTP transport's buffered mode,
// notifications are never suppressed here — every ServerMessage, result,
// error, or notification, is written inline as it is produced: no
// special buffering or suppression.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// Transport runs one stdio connection's loop against Chain. A stdio
// connection is long-lived rather than per-request, so the session
// lifecycle collapses to a single mint at the connection's "initialize"
// request rather than the HTTP transport's per-request session lookup.
type Transport struct {
	Chain  handler.Handler
	Store  session.KVStore
	Bucket string

	ServerName         string
	ServerVersion      string
	ServerCapabilities json.RawMessage

	Logger *slog.Logger
}

// NewTransport builds a Transport over chain with a default capabilities
// document advertising tools/resources/prompts/logging support.
func NewTransport(chain handler.Handler, store session.KVStore, bucket string, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		Chain:              chain,
		Store:              store,
		Bucket:             bucket,
		ServerCapabilities: json.RawMessage(`{"tools":{},"resources":{},"prompts":{},"logging":{}}`),
		Logger:             logger,
	}
}

// Run executes the loop until r reaches EOF or ctx is cancelled, reading
// newline-delimited JSON-RPC messages from r and writing replies to w.
func (t *Transport) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	frame := mcp.NewlineFrame()
	br := bufio.NewReader(r)
	fw := mcp.NewFrameWriter(w, frame)

	var sess *session.Session
	var protocolVersion string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := mcp.ParseMessage(br, mcp.ByDelimiter([]byte("\n")), frame)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var pe *mcp.ParseError
			if errors.As(err, &pe) {
				t.Logger.Warn("stdio: malformed message", "error", pe)
				t.writeError(fw, mcp.RequestID{}, mcp.NewParseError(pe.Error()))
				continue
			}
			return err
		}

		switch msg.Kind {
		case mcp.ClientMsgNotification:
			mc := &handler.MessageContext{ProtocolVersion: protocolVersion, Session: sess, Frame: frame, ClientStream: handler.NewClientStream(fw)}
			if err := t.Chain.HandleNotification(ctx, mc, msg.Notification); err != nil {
				t.Logger.Warn("stdio: notification dispatch error", "kind", msg.Notification.Kind, "error", err)
			}
			continue
		case mcp.ClientMsgResult, mcp.ClientMsgError:
			// Answers a server-initiated request; nothing to reply with.
			continue
		}

		if err := t.dispatchRequest(ctx, fw, msg, &sess, &protocolVersion); err != nil {
			return err
		}
	}
}

// dispatchRequest handles one ClientMsgRequest: transport-owned methods
// locally, everything else through the chain.
func (t *Transport) dispatchRequest(ctx context.Context, fw *mcp.FrameWriter, msg *mcp.ClientMessage, sess **session.Session, protocolVersion *string) error {
	req := msg.Request

	switch req.Kind {
	case mcp.ReqInitialize:
		if params, err := mcp.DecodeInitializeParams(req); err == nil {
			*protocolVersion = params.ProtocolVersion
		}
		id, err := session.GenerateSessionID()
		if err != nil {
			t.writeError(fw, msg.ID, mcp.NewInternalError("generating session id: "+err.Error()))
			return nil
		}
		*sess = session.New(t.Store, t.Bucket, id)
		result, err := mcp.NewInitializeResult(mcp.InitializeResult{
			ProtocolVersion: *protocolVersion,
			Capabilities:    t.ServerCapabilities,
			ServerInfo:      mcp.ClientInfo{Name: t.ServerName, Version: t.ServerVersion},
		})
		if err != nil {
			t.writeError(fw, msg.ID, mcp.NewInternalError("building initialize result: "+err.Error()))
			return nil
		}
		return mcp.SendMessage(fw, mcp.NewResultMessage(msg.ID, result))

	case mcp.ReqPing, mcp.ReqLoggingSetLevel:
		return mcp.SendMessage(fw, mcp.NewResultMessage(msg.ID, mcp.NewEmptyResult()))
	}

	mc := &handler.MessageContext{ProtocolVersion: *protocolVersion, Session: *sess, Frame: mcp.NewlineFrame(), ClientStream: handler.NewClientStream(fw)}
	out, err := t.Chain.Handle(ctx, mc, req)
	if err != nil {
		t.Logger.Error("stdio: chain dispatch error", "method", req.Kind, "error", err)
		t.writeError(fw, msg.ID, mcp.NewInternalError("internal error"))
		return nil
	}
	if out == nil {
		t.writeError(fw, msg.ID, mcp.NewMethodNotFound(string(req.Kind)))
		return nil
	}
	if out.IsError {
		return mcp.SendMessage(fw, mcp.NewErrorMessage(msg.ID, out.Err))
	}
	return mcp.SendMessage(fw, mcp.NewResultMessage(msg.ID, out.Result))
}

func (t *Transport) writeError(fw *mcp.FrameWriter, id mcp.RequestID, ec mcp.ErrorCode) {
	if err := mcp.SendMessage(fw, mcp.NewErrorMessage(id, ec)); err != nil {
		t.Logger.Error("stdio: writing error response", "error", err)
	}
}
