// Package session implements the C2 typed key-value layer: per-session
// namespacing, the termination flag, and JWT claim bindings, over a
// pluggable KVStore (see internal/adapter/outbound/kv).
package session

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ValueKind tags the encoding of a TypedValue, stored as the leading byte
// of its wire form for round-trip safety.
type ValueKind byte

const (
	AsString ValueKind = iota
	AsBytes
	AsI64
	AsBool
	AsF64
	AsJSON
)

// ErrUnknownValueKind is returned when decoding a TypedValue whose leading
// tag byte does not match a known ValueKind.
var ErrUnknownValueKind = errors.New("session: unknown value kind")

// ErrWrongValueKind is returned when an accessor is called against a
// TypedValue tagged with a different kind.
var ErrWrongValueKind = errors.New("session: typed value accessed as wrong kind")

// TypedValue is a tagged value stored under one session key.
type TypedValue struct {
	Kind ValueKind
	raw  []byte
}

// StringValue builds an AsString TypedValue.
func StringValue(s string) TypedValue { return TypedValue{Kind: AsString, raw: []byte(s)} }

// BytesValue builds an AsBytes TypedValue.
func BytesValue(b []byte) TypedValue { return TypedValue{Kind: AsBytes, raw: append([]byte(nil), b...)} }

// I64Value builds an AsI64 TypedValue.
func I64Value(n int64) TypedValue {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return TypedValue{Kind: AsI64, raw: buf}
}

// BoolValue builds an AsBool TypedValue.
func BoolValue(b bool) TypedValue {
	v := byte(0)
	if b {
		v = 1
	}
	return TypedValue{Kind: AsBool, raw: []byte{v}}
}

// F64Value builds an AsF64 TypedValue.
func F64Value(f float64) TypedValue {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(f))
	return TypedValue{Kind: AsF64, raw: buf}
}

// JSONValue marshals v and builds an AsJSON TypedValue.
func JSONValue(v interface{}) (TypedValue, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return TypedValue{}, err
	}
	return TypedValue{Kind: AsJSON, raw: b}, nil
}

// AsStringVal returns the value as a string.
func (v TypedValue) AsStringVal() (string, error) {
	if v.Kind != AsString {
		return "", ErrWrongValueKind
	}
	return string(v.raw), nil
}

// AsBytesVal returns the value as raw bytes.
func (v TypedValue) AsBytesVal() ([]byte, error) {
	if v.Kind != AsBytes {
		return nil, ErrWrongValueKind
	}
	return v.raw, nil
}

// AsI64Val returns the value as an int64.
func (v TypedValue) AsI64Val() (int64, error) {
	if v.Kind != AsI64 || len(v.raw) != 8 {
		return 0, ErrWrongValueKind
	}
	return int64(binary.BigEndian.Uint64(v.raw)), nil
}

// AsBoolVal returns the value as a bool.
func (v TypedValue) AsBoolVal() (bool, error) {
	if v.Kind != AsBool || len(v.raw) != 1 {
		return false, ErrWrongValueKind
	}
	return v.raw[0] != 0, nil
}

// AsF64Val returns the value as a float64.
func (v TypedValue) AsF64Val() (float64, error) {
	if v.Kind != AsF64 || len(v.raw) != 8 {
		return 0, ErrWrongValueKind
	}
	return math.Float64frombits(binary.BigEndian.Uint64(v.raw)), nil
}

// AsJSONVal unmarshals the value into out.
func (v TypedValue) AsJSONVal(out interface{}) error {
	if v.Kind != AsJSON {
		return ErrWrongValueKind
	}
	return json.Unmarshal(v.raw, out)
}

// Encode renders the TypedValue to its wire form: one tag byte followed by
// the kind-specific payload.
func (v TypedValue) Encode() []byte {
	return append([]byte{byte(v.Kind)}, v.raw...)
}

// DecodeTypedValue parses the wire form produced by Encode.
func DecodeTypedValue(data []byte) (TypedValue, error) {
	if len(data) == 0 {
		return TypedValue{}, fmt.Errorf("session: empty typed value")
	}
	kind := ValueKind(data[0])
	if kind > AsJSON {
		return TypedValue{}, ErrUnknownValueKind
	}
	return TypedValue{Kind: kind, raw: data[1:]}, nil
}
