package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/getwren/wren"
)

type mockLMClient struct {
	resp wren.ChatResponse
	err  error
}

func (m *mockLMClient) Chat(_ context.Context, _ wren.ChatRequest) (wren.ChatResponse, error) {
	return m.resp, m.err
}

func (m *mockLMClient) ChatStream(_ context.Context, _ wren.ChatRequest, ch chan<- string) (wren.ChatResponse, error) {
	if m.resp.Content != "" {
		ch <- m.resp.Content
	}
	close(ch)
	return m.resp, m.err
}

type mockToolClient struct {
	result map[string]any
	err    error
	names  []string
}

func (m *mockToolClient) Call(_ context.Context, _, _ string, _ map[string]any) (map[string]any, error) {
	return m.result, m.err
}

func (m *mockToolClient) List(_ context.Context) ([]string, error) {
	return m.names, m.err
}

func TestNewTracerReturnsUsableTracer(t *testing.T) {
	tracer := NewTracer()
	if tracer == nil {
		t.Fatal("NewTracer() returned nil")
	}

	ctx, span := tracer.Start(context.Background(), "test.span",
		wren.StringAttr("key", "value"), wren.IntAttr("count", 42))
	if ctx == nil || span == nil {
		t.Fatal("Start() returned nil context or span")
	}
	span.SetAttr(wren.BoolAttr("ok", true))
	span.Event("test.event", wren.Float64Attr("score", 0.95))
	span.End()
}

func TestNewTracerErrorSpan(t *testing.T) {
	tracer := NewTracer()
	_, span := tracer.Start(context.Background(), "test.error")
	span.Error(errors.New("boom"))
	span.End()
}

func TestObservedLMClientChat(t *testing.T) {
	want := wren.ChatResponse{Content: "hi", Usage: wren.Usage{InputTokens: 5, OutputTokens: 2}}
	inner := &mockLMClient{resp: want}
	wrapped := WrapLMClient(inner, "llama3", NewTracer())

	got, err := wrapped.Chat(context.Background(), wren.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != want.Content {
		t.Errorf("content = %q, want %q", got.Content, want.Content)
	}
}

func TestObservedLMClientChatError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	inner := &mockLMClient{err: wantErr}
	wrapped := WrapLMClient(inner, "llama3", NewTracer())

	_, err := wrapped.Chat(context.Background(), wren.ChatRequest{})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestObservedLMClientChatStream(t *testing.T) {
	inner := &mockLMClient{resp: wren.ChatResponse{Content: "streamed"}}
	wrapped := WrapLMClient(inner, "llama3", NewTracer())

	ch := make(chan string, 4)
	_, err := wrapped.ChatStream(context.Background(), wren.ChatRequest{}, ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got string
	for c := range ch {
		got += c
	}
	if got != "streamed" {
		t.Errorf("got %q, want %q", got, "streamed")
	}
}

func TestObservedToolClientCall(t *testing.T) {
	inner := &mockToolClient{result: map[string]any{"results": []any{}}}
	wrapped := WrapToolClient(inner, NewTracer())

	got, err := wrapped.Call(context.Background(), "req-1", "web_search", map[string]any{"query": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["results"]; !ok {
		t.Errorf("got %+v, missing results", got)
	}
}

func TestObservedToolClientCallError(t *testing.T) {
	wantErr := errors.New("tool server down")
	inner := &mockToolClient{err: wantErr}
	wrapped := WrapToolClient(inner, NewTracer())

	_, err := wrapped.Call(context.Background(), "req-1", "web_search", nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestObservedToolClientList(t *testing.T) {
	inner := &mockToolClient{names: []string{"web_search", "fetch_page"}}
	wrapped := WrapToolClient(inner, NewTracer())

	names, err := wrapped.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("got %v", names)
	}
}
