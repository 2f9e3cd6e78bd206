package capability

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

type fakePromptProvider struct {
	prompts []mcp.Prompt
}

func (f *fakePromptProvider) ListPrompts(ctx context.Context, cursor *string) ([]mcp.Prompt, *string, error) {
	return f.prompts, nil, nil
}

func (f *fakePromptProvider) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*string, []mcp.PromptMessage, error) {
	msgs := []mcp.PromptMessage{{Role: "user", Content: mcp.NewTextBlock("hello " + arguments["who"])}}
	return nil, msgs, nil
}

var _ PromptProvider = (*fakePromptProvider)(nil)

func TestPromptsHandlerList(t *testing.T) {
	fp := &fakePromptProvider{prompts: []mcp.Prompt{{Name: "greet"}}}
	h := NewPromptsHandler(fp)

	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqPromptsList})
	if err != nil {
		t.Fatalf("prompts/list error = %v", err)
	}
	if out == nil || out.IsError {
		t.Fatalf("prompts/list did not answer: %+v", out)
	}
}

func TestPromptsHandlerGet(t *testing.T) {
	fp := &fakePromptProvider{}
	h := NewPromptsHandler(fp)

	params, _ := json.Marshal(mcp.PromptsGetParams{Name: "greet", Arguments: map[string]string{"who": "world"}})
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqPromptsGet, Params: params})
	if err != nil {
		t.Fatalf("prompts/get error = %v", err)
	}
	if out == nil || out.IsError {
		t.Fatalf("prompts/get did not answer: %+v", out)
	}
}

func TestPromptsHandlerForwardsUnknownMethod(t *testing.T) {
	h := NewPromptsHandler(&fakePromptProvider{})
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqResourcesList})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out != nil {
		t.Fatalf("expected forward (nil outcome), got %+v", out)
	}
}
