package terminal

import (
	"testing"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

func TestHandleAnswersMethodNotFound(t *testing.T) {
	h := New()
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqToolsCall})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out == nil || !out.IsError {
		t.Fatal("Handle() did not answer with an error")
	}
	if out.Err.Tag != mcp.ErrTagMethodNotFound {
		t.Errorf("Err.Tag = %v, want ErrTagMethodNotFound", out.Err.Tag)
	}
	if out.Err.Error() == "" {
		t.Error("Error() message is empty")
	}
}

func TestHandleNotificationIsSilent(t *testing.T) {
	h := New()
	if err := h.HandleNotification(t.Context(), &handler.MessageContext{}, mcp.ClientNotification{Kind: mcp.NotifyInitialized}); err != nil {
		t.Errorf("HandleNotification() error = %v, want nil", err)
	}
}
