// Package mcp provides the typed JSON-RPC/MCP message system: the tagged
// ClientMessage/ServerMessage variants, error-code taxonomy, content
// blocks, and the frame-aware parse/serialize entry points that bridge
// wire bytes to those variants (C1).
package mcp

import (
	"encoding/json"
	"fmt"
)

// ClientMessageKind tags the ClientMessage variant.
type ClientMessageKind int

const (
	ClientMsgRequest ClientMessageKind = iota
	ClientMsgNotification
	ClientMsgResult
	ClientMsgError
)

// ClientMessage is the closed variant described in §3: a Request carries
// an id and a typed ClientRequest; a Notification carries no id; a Result
// or Error answers a server-initiated request the client previously
// received (e.g. sampling/createMessage).
type ClientMessage struct {
	Kind         ClientMessageKind
	ID           RequestID // set for Request, Result, and Error
	HasID        bool
	Request      ClientRequest
	Notification ClientNotification
	Result       json.RawMessage // raw ClientResult payload
	Err          ErrorCode
}

// ParseClientMessage decodes one already-unframed JSON-RPC envelope into a
// ClientMessage. It enforces the JsonRpcEnvelope invariant from §3: exactly
// one of {id+method}, {method without id}, {id+result}, {id+error} is
// inhabited; any other shape is a *ParseError.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Reason: "invalid JSON: " + err.Error()}
	}

	idRaw, hasID := raw["id"]
	_, hasMethod := raw["method"]
	_, hasResult := raw["result"]
	_, hasError := raw["error"]

	hasID = hasID && string(idRaw) != "null"

	switch {
	case hasMethod && hasID:
		return parseClientRequest(raw, idRaw)
	case hasMethod && !hasID:
		return parseClientNotification(raw)
	case hasResult && hasID:
		return parseClientResult(raw, idRaw, hasID)
	case hasError && hasID:
		return parseClientError(raw, idRaw, hasID)
	default:
		return nil, &ParseError{Reason: "message matches none of request/notification/result/error"}
	}
}

func parseClientRequest(raw map[string]json.RawMessage, idRaw json.RawMessage) (*ClientMessage, error) {
	var id RequestID
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return nil, err
	}
	var method string
	if err := json.Unmarshal(raw["method"], &method); err != nil {
		return nil, &ParseError{Reason: "method must be a string"}
	}
	kind, ok := IsKnownRequestKind(method)
	if !ok {
		// Unknown methods are not a parse error: the transport may still
		// answer via the terminal handler's MethodNotFound.
		kind = RequestKind(method)
	}
	return &ClientMessage{
		Kind:  ClientMsgRequest,
		ID:    id,
		HasID: true,
		Request: ClientRequest{
			Kind:   kind,
			Params: raw["params"],
		},
	}, nil
}

func parseClientNotification(raw map[string]json.RawMessage) (*ClientMessage, error) {
	var method string
	if err := json.Unmarshal(raw["method"], &method); err != nil {
		return nil, &ParseError{Reason: "method must be a string"}
	}
	return &ClientMessage{
		Kind: ClientMsgNotification,
		Notification: ClientNotification{
			Kind:   NotificationKind(method),
			Params: raw["params"],
		},
	}, nil
}

func parseClientResult(raw map[string]json.RawMessage, idRaw json.RawMessage, hasID bool) (*ClientMessage, error) {
	msg := &ClientMessage{Kind: ClientMsgResult, Result: raw["result"]}
	if hasID {
		var id RequestID
		if err := json.Unmarshal(idRaw, &id); err != nil {
			return nil, err
		}
		msg.ID = id
		msg.HasID = true
	}
	return msg, nil
}

func parseClientError(raw map[string]json.RawMessage, idRaw json.RawMessage, hasID bool) (*ClientMessage, error) {
	var ec ErrorCode
	if err := json.Unmarshal(raw["error"], &ec); err != nil {
		return nil, &ParseError{Reason: "invalid error object: " + err.Error()}
	}
	msg := &ClientMessage{Kind: ClientMsgError, Err: ec}
	if hasID {
		var id RequestID
		if err := json.Unmarshal(idRaw, &id); err != nil {
			return nil, err
		}
		msg.ID = id
		msg.HasID = true
	}
	return msg, nil
}

// wireRequestOut is the on-wire shape Encode/ParseClientMessage round-trip
// a ClientMessage through, for the round-trip invariant in §4.2/§8.
type wireRequestOut struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorCode      `json:"error,omitempty"`
}

// Encode renders m back to its wire envelope bytes. Used by the round-trip
// invariant (parse(serialize(m)) = m) and by transports that need to
// forward a ClientMessage verbatim (e.g. a middleware rewriting one field
// and re-emitting the rest unchanged).
func (m *ClientMessage) Encode() ([]byte, error) {
	w := wireRequestOut{JSONRPC: "2.0"}
	switch m.Kind {
	case ClientMsgRequest:
		id := m.ID
		w.ID = &id
		w.Method = string(m.Request.Kind)
		w.Params = m.Request.Params
	case ClientMsgNotification:
		w.Method = string(m.Notification.Kind)
		w.Params = m.Notification.Params
	case ClientMsgResult:
		if m.HasID {
			id := m.ID
			w.ID = &id
		}
		w.Result = m.Result
	case ClientMsgError:
		if m.HasID {
			id := m.ID
			w.ID = &id
		}
		w.Error = &m.Err
	default:
		return nil, fmt.Errorf("mcp: unknown ClientMessage kind %d", m.Kind)
	}
	return json.Marshal(w)
}
