package mcp

import "encoding/json"

// RequestKind is the closed set of MCP method names a ClientRequest may
// carry. There are exactly thirteen, per §3.
type RequestKind string

const (
	ReqInitialize             RequestKind = "initialize"
	ReqPing                   RequestKind = "ping"
	ReqToolsList              RequestKind = "tools/list"
	ReqToolsCall              RequestKind = "tools/call"
	ReqResourcesList          RequestKind = "resources/list"
	ReqResourcesRead          RequestKind = "resources/read"
	ReqResourcesSubscribe     RequestKind = "resources/subscribe"
	ReqResourcesUnsubscribe   RequestKind = "resources/unsubscribe"
	ReqResourcesTemplatesList RequestKind = "resources/templates/list"
	ReqPromptsList            RequestKind = "prompts/list"
	ReqPromptsGet             RequestKind = "prompts/get"
	ReqCompletionComplete     RequestKind = "completion/complete"
	ReqLoggingSetLevel        RequestKind = "logging/setLevel"
)

// AllRequestKinds enumerates every ClientRequest method name; it is the
// list IsKnownRequestKind scans. Kept as a slice rather than iterating a
// map so the order is stable across runs.
var AllRequestKinds = []RequestKind{
	ReqInitialize, ReqPing, ReqToolsList, ReqToolsCall,
	ReqResourcesList, ReqResourcesRead, ReqResourcesSubscribe, ReqResourcesUnsubscribe,
	ReqResourcesTemplatesList, ReqPromptsList, ReqPromptsGet,
	ReqCompletionComplete, ReqLoggingSetLevel,
}

// IsKnownRequestKind reports whether method names one of the thirteen
// known MCP request kinds.
func IsKnownRequestKind(method string) (RequestKind, bool) {
	for _, k := range AllRequestKinds {
		if string(k) == method {
			return k, true
		}
	}
	return "", false
}

// ClientRequest is a parsed request: a known Kind plus its raw params,
// kept as json.RawMessage so handlers that don't care about a given kind
// can forward it byte-for-byte without a decode/re-encode round trip.
type ClientRequest struct {
	Kind   RequestKind
	Params json.RawMessage
}

// ClientInfo identifies the connecting client, sent in InitializeParams.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams is the typed shape of an "initialize" request.
type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities"`
	ClientInfo      ClientInfo      `json:"clientInfo"`
}

// DecodeInitializeParams decodes cr.Params as InitializeParams. Callers
// must check cr.Kind == ReqInitialize first.
func DecodeInitializeParams(cr ClientRequest) (InitializeParams, error) {
	var p InitializeParams
	err := json.Unmarshal(cr.Params, &p)
	return p, err
}

// ListParams is the shared cursor-pagination shape for the four *.list
// request kinds.
type ListParams struct {
	Cursor *string `json:"cursor,omitempty"`
}

// DecodeListParams decodes cr.Params as ListParams (empty params is valid
// — Cursor stays nil, meaning "first page").
func DecodeListParams(cr ClientRequest) (ListParams, error) {
	var p ListParams
	if len(cr.Params) == 0 {
		return p, nil
	}
	err := json.Unmarshal(cr.Params, &p)
	return p, err
}

// ToolsCallParams is the typed shape of a "tools/call" request.
type ToolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Meta      json.RawMessage `json:"_meta,omitempty"`
}

// DecodeToolsCallParams decodes cr.Params as ToolsCallParams.
func DecodeToolsCallParams(cr ClientRequest) (ToolsCallParams, error) {
	var p ToolsCallParams
	err := json.Unmarshal(cr.Params, &p)
	if err != nil {
		return p, err
	}
	if p.Name == "" {
		return p, &ParseError{Reason: "tools/call params missing required \"name\""}
	}
	return p, nil
}

// ResourcesReadParams is the typed shape of a "resources/read" request.
type ResourcesReadParams struct {
	URI string `json:"uri"`
}

// DecodeResourcesReadParams decodes cr.Params as ResourcesReadParams.
func DecodeResourcesReadParams(cr ClientRequest) (ResourcesReadParams, error) {
	var p ResourcesReadParams
	err := json.Unmarshal(cr.Params, &p)
	return p, err
}

// ResourcesSubscribeParams is shared by "resources/subscribe" and
// "resources/unsubscribe".
type ResourcesSubscribeParams struct {
	URI string `json:"uri"`
}

// DecodeResourcesSubscribeParams decodes cr.Params as ResourcesSubscribeParams.
func DecodeResourcesSubscribeParams(cr ClientRequest) (ResourcesSubscribeParams, error) {
	var p ResourcesSubscribeParams
	err := json.Unmarshal(cr.Params, &p)
	return p, err
}

// PromptsGetParams is the typed shape of a "prompts/get" request.
type PromptsGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// DecodePromptsGetParams decodes cr.Params as PromptsGetParams.
func DecodePromptsGetParams(cr ClientRequest) (PromptsGetParams, error) {
	var p PromptsGetParams
	err := json.Unmarshal(cr.Params, &p)
	return p, err
}

// CompletionCompleteParams is the typed shape of a "completion/complete"
// request.
type CompletionCompleteParams struct {
	Ref      json.RawMessage `json:"ref"`
	Argument json.RawMessage `json:"argument"`
}

// DecodeCompletionCompleteParams decodes cr.Params as CompletionCompleteParams.
func DecodeCompletionCompleteParams(cr ClientRequest) (CompletionCompleteParams, error) {
	var p CompletionCompleteParams
	err := json.Unmarshal(cr.Params, &p)
	return p, err
}

// LoggingSetLevelParams is the typed shape of a "logging/setLevel" request.
type LoggingSetLevelParams struct {
	Level string `json:"level"`
}

// DecodeLoggingSetLevelParams decodes cr.Params as LoggingSetLevelParams.
func DecodeLoggingSetLevelParams(cr ClientRequest) (LoggingSetLevelParams, error) {
	var p LoggingSetLevelParams
	err := json.Unmarshal(cr.Params, &p)
	return p, err
}
