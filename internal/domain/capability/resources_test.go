package capability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

type fakeResourceProvider struct {
	resources   []mcp.Resource
	templates   []mcp.ResourceTemplate
	contents    []mcp.ResourceContents
	subscribed  map[string]bool
	readErr     error
}

func newFakeResourceProvider() *fakeResourceProvider {
	return &fakeResourceProvider{subscribed: make(map[string]bool)}
}

func (f *fakeResourceProvider) ListResources(ctx context.Context, cursor *string) ([]mcp.Resource, *string, error) {
	return f.resources, nil, nil
}

func (f *fakeResourceProvider) ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.contents, nil
}

func (f *fakeResourceProvider) ListResourceTemplates(ctx context.Context, cursor *string) ([]mcp.ResourceTemplate, *string, error) {
	return f.templates, nil, nil
}

func (f *fakeResourceProvider) Subscribe(ctx context.Context, uri string) error {
	f.subscribed[uri] = true
	return nil
}

func (f *fakeResourceProvider) Unsubscribe(ctx context.Context, uri string) error {
	delete(f.subscribed, uri)
	return nil
}

var _ ResourceProvider = (*fakeResourceProvider)(nil)

func TestResourcesHandlerList(t *testing.T) {
	fp := newFakeResourceProvider()
	fp.resources = []mcp.Resource{{URI: "file:///a", Name: "a"}}
	h := NewResourcesHandler(fp)

	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqResourcesList})
	if err != nil {
		t.Fatalf("resources/list error = %v", err)
	}
	if out == nil || out.IsError {
		t.Fatalf("resources/list did not answer: %+v", out)
	}
}

func TestResourcesHandlerReadPropagatesProviderError(t *testing.T) {
	fp := newFakeResourceProvider()
	fp.readErr = errors.New("boom")
	h := NewResourcesHandler(fp)

	params, _ := json.Marshal(mcp.ResourcesReadParams{URI: "file:///missing"})
	_, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqResourcesRead, Params: params})
	if err == nil {
		t.Fatal("expected a Go-level error from the provider to propagate")
	}
}

func TestResourcesHandlerSubscribeUnsubscribe(t *testing.T) {
	fp := newFakeResourceProvider()
	h := NewResourcesHandler(fp)

	params, _ := json.Marshal(mcp.ResourcesSubscribeParams{URI: "file:///a"})
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqResourcesSubscribe, Params: params})
	if err != nil || out == nil || out.IsError {
		t.Fatalf("subscribe failed: out=%+v err=%v", out, err)
	}
	if !fp.subscribed["file:///a"] {
		t.Fatal("provider was not called")
	}

	out, err = h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqResourcesUnsubscribe, Params: params})
	if err != nil || out == nil || out.IsError {
		t.Fatalf("unsubscribe failed: out=%+v err=%v", out, err)
	}
	if fp.subscribed["file:///a"] {
		t.Fatal("provider was not called")
	}
}

func TestResourcesHandlerForwardsUnknownMethod(t *testing.T) {
	h := NewResourcesHandler(newFakeResourceProvider())
	out, err := h.Handle(t.Context(), &handler.MessageContext{}, mcp.ClientRequest{Kind: mcp.ReqToolsList})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out != nil {
		t.Fatalf("expected forward (nil outcome), got %+v", out)
	}
}
