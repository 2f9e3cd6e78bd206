package mcp

import (
	"bufio"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// validateEnvelope delegates to the SDK's own JSON-RPC 2.0 envelope
// validation (version field, id shape) before this package's variant
// dispatch runs, the same way this package's earlier codec delegated
// whole-message encode/decode to the same package. A failure here is reported as a
// ParseError, same as a shape mismatch caught by ParseClientMessage
// itself.
func validateEnvelope(data []byte) error {
	if _, err := jsonrpc.DecodeMessage(data); err != nil {
		return &ParseError{Reason: "invalid JSON-RPC envelope: " + err.Error()}
	}
	return nil
}

// ParseMessage is C1's parse_message entry point: read one message's worth
// of bytes from r per limit, strip frame, and dispatch to a ClientMessage.
func ParseMessage(r *bufio.Reader, limit ReadLimit, frame MessageFrame) (*ClientMessage, error) {
	raw, err := ReadFramedMessage(r, limit, frame)
	if err != nil {
		return nil, err
	}
	if err := validateEnvelope(raw); err != nil {
		return nil, err
	}
	return ParseClientMessage(raw)
}
