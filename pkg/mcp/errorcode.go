package mcp

import "encoding/json"

// ErrorTag is the closed set of JSON-RPC/MCP error categories. The numeric
// wire code is a total function of the tag (see Code).
type ErrorTag string

const (
	ErrTagParseError     ErrorTag = "parse_error"
	ErrTagInvalidRequest ErrorTag = "invalid_request"
	ErrTagMethodNotFound ErrorTag = "method_not_found"
	ErrTagInvalidParams  ErrorTag = "invalid_params"
	ErrTagInternalError  ErrorTag = "internal_error"
	// ErrTagServer covers the JSON-RPC reserved server-error range
	// (-32000 to -32099) and any MCP-specific code outside the standard
	// five; the concrete numeric value travels in ErrorCode.custom.
	ErrTagServer ErrorTag = "server_error"
)

// wireCodes maps each standard tag to its fixed JSON-RPC numeric code.
var wireCodes = map[ErrorTag]int32{
	ErrTagParseError:     -32700,
	ErrTagInvalidRequest: -32600,
	ErrTagMethodNotFound: -32601,
	ErrTagInvalidParams:  -32602,
	ErrTagInternalError:  -32603,
}

// ErrorCode is the ServerMessage error variant: a tag plus the message and
// optional structured data carried on the wire. For ErrTagServer, Custom
// holds the concrete code (round-tripped verbatim).
type ErrorCode struct {
	Tag     ErrorTag
	Msg     string
	Data    json.RawMessage
	Custom  int32 // only meaningful when Tag == ErrTagServer
}

// Code returns the numeric JSON-RPC error code for this ErrorCode. This is
// a total function from tag to wire code
// invariant: tag -> code never varies.
func (e ErrorCode) Code() int32 {
	if c, ok := wireCodes[e.Tag]; ok {
		return c
	}
	return e.Custom
}

func (e ErrorCode) Error() string { return e.Msg }

// NewParseError builds the ParseError wire variant (-32700).
func NewParseError(msg string) ErrorCode { return ErrorCode{Tag: ErrTagParseError, Msg: msg} }

// NewInvalidRequest builds the InvalidRequest wire variant (-32600).
func NewInvalidRequest(msg string) ErrorCode { return ErrorCode{Tag: ErrTagInvalidRequest, Msg: msg} }

// NewMethodNotFound builds the MethodNotFound wire variant (-32601). The
// terminal handler (C4) answers it for any request no earlier handler
// claimed, and the filter middleware (C6) for a tools/call it blocks.
func NewMethodNotFound(method string) ErrorCode {
	return ErrorCode{Tag: ErrTagMethodNotFound, Msg: "Method not found: " + method}
}

// NewInvalidParams builds the InvalidParams wire variant (-32602).
func NewInvalidParams(msg string) ErrorCode { return ErrorCode{Tag: ErrTagInvalidParams, Msg: msg} }

// NewInternalError builds the InternalError wire variant (-32603).
func NewInternalError(msg string) ErrorCode { return ErrorCode{Tag: ErrTagInternalError, Msg: msg} }

// NewServerError builds a server-reserved-range or MCP-specific error with
// an explicit numeric code.
func NewServerError(code int32, msg string) ErrorCode {
	return ErrorCode{Tag: ErrTagServer, Msg: msg, Custom: code}
}

// wireError is the JSON-RPC 2.0 error object shape.
type wireError struct {
	Code    int32           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON renders the fixed JSON-RPC error-object shape.
func (e ErrorCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireError{Code: e.Code(), Message: e.Msg, Data: e.Data})
}

// UnmarshalJSON reconstructs an ErrorCode from a JSON-RPC error object,
// mapping known codes back to their tag (ErrTagServer otherwise). This is
// the reverse leg of the error-code totality invariant: re-parsing a
// serialized ErrorCode always recovers the same numeric code via Code().
func (e *ErrorCode) UnmarshalJSON(data []byte) error {
	var w wireError
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	for tag, code := range wireCodes {
		if code == w.Code {
			*e = ErrorCode{Tag: tag, Msg: w.Message, Data: w.Data}
			return nil
		}
	}
	*e = ErrorCode{Tag: ErrTagServer, Msg: w.Message, Data: w.Data, Custom: w.Code}
	return nil
}
