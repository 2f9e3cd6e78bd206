package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestID is the JSON-RPC request identifier: either a number or a
// string, never both. The zero value is not a valid id; use
// NewRequestIDString or NewRequestIDNumber, or decode one with
// UnmarshalJSON.
type RequestID struct {
	str      string
	num      int64
	isString bool
	isSet    bool
}

// NewRequestIDString builds a string-valued RequestID.
func NewRequestIDString(s string) RequestID {
	return RequestID{str: s, isString: true, isSet: true}
}

// NewRequestIDNumber builds a number-valued RequestID.
func NewRequestIDNumber(n int64) RequestID {
	return RequestID{num: n, isSet: true}
}

// IsZero reports whether the id was never set (no "id" field present).
func (r RequestID) IsZero() bool { return !r.isSet }

// IsString reports whether the id is a string, as opposed to a number.
func (r RequestID) IsString() bool { return r.isString }

// String renders the id for logging; it does not imply the id is string-typed.
func (r RequestID) String() string {
	if !r.isSet {
		return "<none>"
	}
	if r.isString {
		return r.str
	}
	return strconv.FormatInt(r.num, 10)
}

// Equal reports bit-exact equality: a string "1" and a number 1 are distinct.
func (r RequestID) Equal(other RequestID) bool {
	if r.isSet != other.isSet {
		return false
	}
	if r.isString != other.isString {
		return false
	}
	if r.isString {
		return r.str == other.str
	}
	return r.num == other.num
}

// MarshalJSON preserves the number-vs-string distinction exactly.
func (r RequestID) MarshalJSON() ([]byte, error) {
	if !r.isSet {
		return []byte("null"), nil
	}
	if r.isString {
		return json.Marshal(r.str)
	}
	return json.Marshal(r.num)
}

// UnmarshalJSON rejects ids that are neither an integer nor a string, per
// "a RequestId that is neither integer nor string is a parse
// error" rule.
func (r *RequestID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" {
		*r = RequestID{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("mcp: invalid string request id: %w", err)
		}
		*r = RequestID{str: s, isString: true, isSet: true}
		return nil
	}
	var n int64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return &ParseError{Reason: "request id must be an integer or a string"}
	}
	*r = RequestID{num: n, isSet: true}
	return nil
}

// ParseError is returned by the C1 parser for malformed wire input. It is
// distinct from the wire-level ErrorCode: a ParseError means the envelope
// could not even be dispatched onto a ClientMessage variant.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "mcp: parse error: " + e.Reason }
