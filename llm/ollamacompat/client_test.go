package ollamacompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getwren/wren"
)

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("expected stream=false for Chat")
		}
		json.NewEncoder(w).Encode(chatChunk{
			Message:         chatMessage{Role: "assistant", Content: "hello"},
			Done:            true,
			PromptEvalCount: 3,
			EvalCount:       2,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Chat(context.Background(), wren.ChatRequest{
		Model:    "llama3",
		Messages: []wren.ChatMessage{wren.UserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.InputTokens != 3 || resp.Usage.OutputTokens != 2 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestClient_ChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines := []chatChunk{
			{Message: chatMessage{Role: "assistant", Content: "Hel"}},
			{Message: chatMessage{Role: "assistant", Content: "lo"}},
			{Done: true, PromptEvalCount: 1, EvalCount: 1},
		}
		for _, l := range lines {
			b, _ := json.Marshal(l)
			w.Write(b)
			w.Write([]byte("\n"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ch := make(chan string, 8)
	resp, err := c.ChatStream(context.Background(), wren.ChatRequest{
		Model:    "llama3",
		Messages: []wren.ChatMessage{wren.UserMessage("hi")},
	}, ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got strings.Builder
	for c := range ch {
		got.WriteString(c)
	}
	if got.String() != "Hello" {
		t.Errorf("got %q, want %q", got.String(), "Hello")
	}
	if resp.Content != "Hello" {
		t.Errorf("resp.Content = %q", resp.Content)
	}
}

func TestClient_ErrHTTPOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Chat(context.Background(), wren.ChatRequest{Model: "llama3"})
	var httpErr *wren.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *wren.ErrHTTP, got %T (%v)", err, err)
	}
	if httpErr.Status != 503 {
		t.Errorf("status = %d", httpErr.Status)
	}
	if httpErr.RetryAfter.Seconds() != 2 {
		t.Errorf("retry-after = %v", httpErr.RetryAfter)
	}
}

func TestClient_ModelNotInstalled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'ghost' not found, try pulling it first"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Chat(context.Background(), wren.ChatRequest{Model: "ghost"})
	var notInstalled *wren.ErrModelNotInstalled
	if !errors.As(err, &notInstalled) {
		t.Fatalf("expected *wren.ErrModelNotInstalled, got %T (%v)", err, err)
	}
}

func TestClient_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tagsResponse{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Healthy(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_ModelInstalled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tagsResponse{Models: []struct {
			Name string `json:"name"`
		}{{Name: "llama3:latest"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ok, err := c.ModelInstalled(context.Background(), "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected llama3 to be reported installed")
	}
}
