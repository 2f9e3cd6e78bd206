package capability

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

func TestToolsHandlerListAndCall(t *testing.T) {
	reg := NewStaticToolRegistry()
	reg.Register(mcp.Tool{Name: "echo", InputSchema: json.RawMessage(`{}`)}, func(ctx context.Context, arguments json.RawMessage) ([]mcp.ContentBlock, bool, error) {
		return []mcp.ContentBlock{mcp.NewTextBlock("hi")}, false, nil
	})
	h := NewToolsHandler(reg)

	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqToolsList})
	if err != nil {
		t.Fatalf("tools/list error = %v", err)
	}
	if out == nil || out.IsError {
		t.Fatalf("tools/list did not answer: %+v", out)
	}

	params, _ := json.Marshal(mcp.ToolsCallParams{Name: "echo"})
	out, err = h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqToolsCall, Params: params})
	if err != nil {
		t.Fatalf("tools/call error = %v", err)
	}
	if out == nil || out.IsError {
		t.Fatalf("tools/call did not answer: %+v", out)
	}
}

func TestToolsHandlerCallUnknownToolIsToolLevelError(t *testing.T) {
	reg := NewStaticToolRegistry()
	h := NewToolsHandler(reg)

	params, _ := json.Marshal(mcp.ToolsCallParams{Name: "missing"})
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqToolsCall, Params: params})
	if err != nil {
		t.Fatalf("tools/call error = %v", err)
	}
	if out == nil || out.IsError {
		t.Fatalf("unknown tool should answer with a CallToolResult isError=true, not a protocol error: %+v", out)
	}
}

func TestToolsHandlerForwardsUnknownMethod(t *testing.T) {
	h := NewToolsHandler(NewStaticToolRegistry())
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqPromptsList})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out != nil {
		t.Fatalf("expected forward (nil outcome), got %+v", out)
	}
}

func TestToolsHandlerCallRejectsMissingName(t *testing.T) {
	h := NewToolsHandler(NewStaticToolRegistry())
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqToolsCall, Params: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out == nil || !out.IsError || out.Err.Tag != mcp.ErrTagInvalidParams {
		t.Fatalf("expected InvalidParams, got %+v", out)
	}
}
