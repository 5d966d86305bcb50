package wren

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeToolClient is a test ToolClient with per-call canned responses keyed
// by tool name.
type fakeToolClient struct {
	results map[string]map[string]any
	errs    map[string]error
	calls   []string
	sleep   time.Duration
}

func (f *fakeToolClient) Call(ctx context.Context, requestID, name string, args map[string]any) (map[string]any, error) {
	f.calls = append(f.calls, name)
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.results[name], nil
}

func (f *fakeToolClient) List(ctx context.Context) ([]string, error) {
	return []string{"web_search", "fetch_page", "save_note", "list_notes", "get_note"}, nil
}

func TestDispatcher_UnknownToolRejectedWithoutInvocation(t *testing.T) {
	client := &fakeToolClient{}
	d := &Dispatcher{Client: client}

	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "summarize", Arguments: map[string]any{}})
	if exec.Success {
		t.Error("expected success=false for unknown tool")
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no HTTP calls for unknown tool, got %d", len(client.calls))
	}
	if exec.DurationMS != 0 {
		t.Errorf("expected zero duration, got %v", exec.DurationMS)
	}
}

func TestDispatcher_SuccessfulCall(t *testing.T) {
	client := &fakeToolClient{results: map[string]map[string]any{
		"web_search": {"results": []any{}},
	}}
	d := &Dispatcher{Client: client}

	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "web_search", Arguments: map[string]any{"query": "x"}})
	if !exec.Success {
		t.Errorf("expected success, got error %q", exec.Error)
	}
	if exec.Result == nil {
		t.Error("expected non-nil result")
	}
}

func TestDispatcher_ProtocolErrorFoldedToFailure(t *testing.T) {
	client := &fakeToolClient{errs: map[string]error{
		"fetch_page": &ToolProtocolError{RPCCode: -32602, Message: "invalid params"},
	}}
	d := &Dispatcher{Client: client}

	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "fetch_page", Arguments: map[string]any{"url": "https://x"}})
	if exec.Success {
		t.Error("expected success=false")
	}
	if exec.Error != "invalid params" {
		t.Errorf("got error %q, want %q", exec.Error, "invalid params")
	}
}

func TestDispatcher_TransportErrorFoldedToFailure(t *testing.T) {
	client := &fakeToolClient{errs: map[string]error{
		"web_search": &ServiceError{Op: "tools/call", Cause: errors.New("connection refused")},
	}}
	d := &Dispatcher{Client: client}

	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "web_search", Arguments: map[string]any{"query": "x"}})
	if exec.Success {
		t.Error("expected success=false")
	}
}

func TestDispatcher_InjectsFetchExtractModeDefault(t *testing.T) {
	client := &fakeToolClient{results: map[string]map[string]any{"fetch_page": {"url": "https://x"}}}
	d := &Dispatcher{Client: client, FetchExtractMode: ExtractMarkdown}

	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "fetch_page", Arguments: map[string]any{"url": "https://x"}})
	if exec.Arguments["extract_mode"] != "markdown" {
		t.Errorf("got extract_mode=%v, want markdown", exec.Arguments["extract_mode"])
	}
}

func TestDispatcher_DoesNotOverrideExplicitExtractMode(t *testing.T) {
	client := &fakeToolClient{results: map[string]map[string]any{"fetch_page": {"url": "https://x"}}}
	d := &Dispatcher{Client: client, FetchExtractMode: ExtractMarkdown}

	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "fetch_page", Arguments: map[string]any{"url": "https://x", "extract_mode": "text"}})
	if exec.Arguments["extract_mode"] != "text" {
		t.Errorf("got extract_mode=%v, want text (explicit)", exec.Arguments["extract_mode"])
	}
}

func TestDispatcher_Timeout(t *testing.T) {
	client := &fakeToolClient{sleep: 50 * time.Millisecond, results: map[string]map[string]any{"web_search": {}}}
	d := &Dispatcher{Client: client, Timeout: 5 * time.Millisecond}

	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "web_search", Arguments: map[string]any{"query": "x"}})
	if exec.Success {
		t.Error("expected timeout to produce success=false")
	}
	if exec.ErrorCode != CodeSearchTimeout {
		t.Errorf("got ErrorCode %q, want %q", exec.ErrorCode, CodeSearchTimeout)
	}
}

func TestDispatcher_UnknownToolErrorCode(t *testing.T) {
	d := &Dispatcher{Client: &fakeToolClient{}}
	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "summarize", Arguments: map[string]any{}})
	if exec.ErrorCode != CodeInvalidTool {
		t.Errorf("got ErrorCode %q, want %q", exec.ErrorCode, CodeInvalidTool)
	}
}

func TestDispatcher_ProtocolErrorCodePerToolFamily(t *testing.T) {
	tests := []struct {
		tool string
		want Code
	}{
		{"web_search", CodeSearchFailed},
		{"fetch_page", CodeFetchFailed},
		{"save_note", CodeNoteSaveFailed},
		{"list_notes", CodeNotesQueryFailed},
		{"get_note", CodeNotesQueryFailed},
	}
	for _, tt := range tests {
		client := &fakeToolClient{errs: map[string]error{
			tt.tool: &ToolProtocolError{RPCCode: -32602, Message: "invalid params"},
		}}
		d := &Dispatcher{Client: client}
		exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: tt.tool, Arguments: map[string]any{"query": "x", "url": "https://x", "id": "x"}})
		if exec.ErrorCode != tt.want {
			t.Errorf("tool %s: got ErrorCode %q, want %q", tt.tool, exec.ErrorCode, tt.want)
		}
	}
}

func TestDispatcher_TransportErrorCode(t *testing.T) {
	client := &fakeToolClient{errs: map[string]error{
		"web_search": &ServiceError{Op: "tools/call", Cause: errors.New("connection refused")},
	}}
	d := &Dispatcher{Client: client}
	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "web_search", Arguments: map[string]any{"query": "x"}})
	if exec.ErrorCode != CodeToolServerUnavailable {
		t.Errorf("got ErrorCode %q, want %q", exec.ErrorCode, CodeToolServerUnavailable)
	}
}

func TestDispatcher_FiresCallbacks(t *testing.T) {
	client := &fakeToolClient{results: map[string]map[string]any{"web_search": {}}}
	var started, completed bool
	d := &Dispatcher{
		Client:     client,
		OnStart:    func(name string, args map[string]any) { started = true },
		OnComplete: func(name string, result map[string]any, success bool) { completed = success },
	}
	d.Dispatch(context.Background(), "req-1", ToolCall{Name: "web_search", Arguments: map[string]any{"query": "x"}})
	if !started || !completed {
		t.Errorf("started=%v completed=%v, want both true", started, completed)
	}
}

func TestDispatcher_CallbackPanicDoesNotCorruptDispatch(t *testing.T) {
	client := &fakeToolClient{results: map[string]map[string]any{"web_search": {}}}
	d := &Dispatcher{
		Client:  client,
		OnStart: func(name string, args map[string]any) { panic("boom") },
	}
	exec := d.Dispatch(context.Background(), "req-1", ToolCall{Name: "web_search", Arguments: map[string]any{"query": "x"}})
	if !exec.Success {
		t.Errorf("expected dispatch to still succeed despite callback panic, got error %q", exec.Error)
	}
}
