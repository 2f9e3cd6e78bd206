package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
)

func TestParseClientMessageRequest(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"read_file"}}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	if msg.Kind != ClientMsgRequest {
		t.Fatalf("expected ClientMsgRequest, got %v", msg.Kind)
	}
	if msg.Request.Kind != ReqToolsCall {
		t.Errorf("expected tools/call, got %q", msg.Request.Kind)
	}
	if msg.ID.IsString() || msg.ID.String() != "1" {
		t.Errorf("unexpected id: %v", msg.ID)
	}
}

func TestParseClientMessageNotification(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	if msg.Kind != ClientMsgNotification {
		t.Fatalf("expected ClientMsgNotification, got %v", msg.Kind)
	}
	if msg.Notification.Kind != NotifyInitialized {
		t.Errorf("unexpected notification kind %q", msg.Notification.Kind)
	}
}

func TestParseClientMessageMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not valid json", []byte(`{not valid`)},
		{"empty object", []byte(`{}`)},
		{"id neither int nor string", []byte(`{"jsonrpc":"2.0","id":[1],"method":"ping"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClientMessage(tt.data); err == nil {
				t.Errorf("expected error for %q", tt.name)
			}
		})
	}
}

func TestClientMessageEncodeRoundTrip(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":"req-1","method":"ping"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	encoded, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	reparsed, err := ParseClientMessage(encoded)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if !reparsed.ID.Equal(msg.ID) {
		t.Errorf("id not preserved across round-trip: got %v want %v", reparsed.ID, msg.ID)
	}
	if reparsed.Request.Kind != msg.Request.Kind {
		t.Errorf("method not preserved: got %q want %q", reparsed.Request.Kind, msg.Request.Kind)
	}
}

func TestServerMessageIDPreservation(t *testing.T) {
	id := NewRequestIDString("abc")
	sm := NewResultMessage(id, NewEmptyResult())
	body, err := sm.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(decoded.ID) != `"abc"` {
		t.Errorf("id not bit-preserved: got %s", decoded.ID)
	}
}

func TestErrorCodeTotality(t *testing.T) {
	for _, ec := range []ErrorCode{
		NewParseError("bad"),
		NewInvalidRequest("bad"),
		NewMethodNotFound("foo"),
		NewInvalidParams("bad"),
		NewInternalError("bad"),
		NewServerError(-32050, "custom"),
	} {
		body, err := ec.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON: %v", err)
		}
		var reparsed ErrorCode
		if err := json.Unmarshal(body, &reparsed); err != nil {
			t.Fatalf("UnmarshalJSON: %v", err)
		}
		if reparsed.Code() != ec.Code() {
			t.Errorf("code not preserved: got %d want %d", reparsed.Code(), ec.Code())
		}
	}
}

func TestParseMessageNewlineFrame(t *testing.T) {
	line := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	r := bufio.NewReader(bytes.NewBufferString(line))
	msg, err := ParseMessage(r, ByDelimiter([]byte("\n")), NewlineFrame())
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.Request.Kind != ReqPing {
		t.Errorf("expected ping, got %q", msg.Request.Kind)
	}
}

func TestFrameWriterBufferedSuppressesNotifications(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf, PlainJSONFrame())
	n := NewNotificationMessage(NewToolsListChangedNotification())
	if err := SendMessage(fw, n); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no bytes written for suppressed notification, got %q", buf.String())
	}
}

func TestFrameWriterSSEStreamsNotifications(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf, SSEFrame())
	n := NewNotificationMessage(NewToolsListChangedNotification())
	if err := SendMessage(fw, n); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("data: ")) || !bytes.HasSuffix(buf.Bytes(), []byte("\n\n")) {
		t.Errorf("expected SSE-framed output, got %q", buf.String())
	}
}
