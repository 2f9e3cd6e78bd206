package mcp

import (
	"encoding/json"
	"fmt"
)

// ServerNotificationKind is the closed set of server-initiated
// notification methods.
type ServerNotificationKind string

const (
	NotifyToolsListChanged     ServerNotificationKind = "notifications/tools/list_changed"
	NotifyResourcesListChanged ServerNotificationKind = "notifications/resources/list_changed"
	NotifyResourcesUpdated     ServerNotificationKind = "notifications/resources/updated"
	NotifyPromptsListChanged   ServerNotificationKind = "notifications/prompts/list_changed"
	NotifyLogMessage           ServerNotificationKind = "notifications/message"
	NotifyServerProgress       ServerNotificationKind = "notifications/progress"
	NotifyServerCancelled      ServerNotificationKind = "notifications/cancelled"
)

// ServerNotification is a server-initiated, id-less message.
type ServerNotification struct {
	Kind   ServerNotificationKind
	Params json.RawMessage
}

// NewProgressNotification builds a "notifications/progress" notification.
func NewProgressNotification(p ProgressParams) (ServerNotification, error) {
	b, err := json.Marshal(p)
	return ServerNotification{Kind: NotifyServerProgress, Params: b}, err
}

// NewToolsListChangedNotification builds a "notifications/tools/list_changed"
// notification (no params).
func NewToolsListChangedNotification() ServerNotification {
	return ServerNotification{Kind: NotifyToolsListChanged, Params: json.RawMessage("{}")}
}

// NewLogMessageNotification builds a "notifications/message" notification.
func NewLogMessageNotification(level, logger string, data json.RawMessage) (ServerNotification, error) {
	b, err := json.Marshal(struct {
		Level  string          `json:"level"`
		Logger string          `json:"logger,omitempty"`
		Data   json.RawMessage `json:"data,omitempty"`
	}{level, logger, data})
	return ServerNotification{Kind: NotifyLogMessage, Params: b}, err
}

// ServerMessageKind tags the ServerMessage variant.
type ServerMessageKind int

const (
	ServerMsgResult ServerMessageKind = iota
	ServerMsgError
	ServerMsgNotification
)

// ServerMessage is the closed ServerMessage variant mirroring
// ClientMessage: a Result or Error answers a RequestID; a Notification
// carries no id.
type ServerMessage struct {
	Kind         ServerMessageKind
	ID           RequestID
	Result       ServerResult
	Err          ErrorCode
	Notification ServerNotification
}

// NewResultMessage builds the ServerMsgResult variant answering id.
func NewResultMessage(id RequestID, result ServerResult) ServerMessage {
	return ServerMessage{Kind: ServerMsgResult, ID: id, Result: result}
}

// NewErrorMessage builds the ServerMsgError variant answering id. id may be
// the zero value when the request id could not be recovered from a
// malformed message, per §7's recovery policy (JSON-RPC id: null).
func NewErrorMessage(id RequestID, err ErrorCode) ServerMessage {
	return ServerMessage{Kind: ServerMsgError, ID: id, Err: err}
}

// NewNotificationMessage builds the ServerMsgNotification variant.
func NewNotificationMessage(n ServerNotification) ServerMessage {
	return ServerMessage{Kind: ServerMsgNotification, Notification: n}
}

type wireServerOut struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// Encode renders the ServerMessage to its wire envelope bytes.
func (m ServerMessage) Encode() ([]byte, error) {
	w := wireServerOut{JSONRPC: "2.0"}
	switch m.Kind {
	case ServerMsgResult:
		idBytes, err := m.ID.MarshalJSON()
		if err != nil {
			return nil, err
		}
		w.ID = idBytes
		w.Result = m.Result.Body
	case ServerMsgError:
		idBytes, err := m.ID.MarshalJSON()
		if err != nil {
			return nil, err
		}
		w.ID = idBytes
		errBytes, err := m.Err.MarshalJSON()
		if err != nil {
			return nil, err
		}
		w.Error = errBytes
	case ServerMsgNotification:
		w.Method = string(m.Notification.Kind)
		w.Params = m.Notification.Params
	default:
		return nil, fmt.Errorf("mcp: unknown ServerMessage kind %d", m.Kind)
	}
	return json.Marshal(w)
}

// IsNotification reports whether m carries no response id (and is thus
// subject to suppression in buffered/plain-JSON mode, per §4.2).
func (m ServerMessage) IsNotification() bool { return m.Kind == ServerMsgNotification }

// SendMessage encodes m and writes it through fw, honoring the
// notification-suppression rule: a ServerNotification is silently dropped
// when fw's frame is the empty/plain-JSON frame.
func SendMessage(fw *FrameWriter, m ServerMessage) error {
	if m.IsNotification() && fw.SuppressesNotifications() {
		return nil
	}
	body, err := m.Encode()
	if err != nil {
		return err
	}
	return fw.WriteMessage(body)
}
