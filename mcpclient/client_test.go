package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getwren/wren"
)

func TestClient_CallSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "tools/call" {
			t.Errorf("method = %q", req.Method)
		}
		if req.ID != "req-1" {
			t.Errorf("id = %q, want req-1", req.ID)
		}
		json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  json.RawMessage(`{"results":[{"url":"https://a","title":"A"}]}`),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Call(context.Background(), "req-1", "web_search", map[string]any{"query": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result["results"]; !ok {
		t.Errorf("got %+v, missing results key", result)
	}
}

func TestClient_CallProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0",
			ID:      "req-1",
			Error:   &rpcError{Code: -32601, Message: "method not found"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Call(context.Background(), "req-1", "summarize", nil)
	var protoErr *wren.ToolProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *wren.ToolProtocolError, got %T (%v)", err, err)
	}
	if protoErr.RPCCode != -32601 {
		t.Errorf("rpc code = %d", protoErr.RPCCode)
	}
}

func TestClient_CallTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // nothing listening
	_, err := c.Call(context.Background(), "req-1", "web_search", nil)
	var svcErr *wren.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *wren.ServiceError, got %T (%v)", err, err)
	}
}

func TestClient_CallHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "overloaded")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Call(context.Background(), "req-1", "web_search", nil)
	var svcErr *wren.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *wren.ServiceError, got %T (%v)", err, err)
	}
	var httpErr *wren.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected wrapped *wren.ErrHTTP, got %v", svcErr.Cause)
	}
	if httpErr.Status != 503 {
		t.Errorf("status = %d", httpErr.Status)
	}
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "tools/list" {
			t.Errorf("method = %q", req.Method)
		}
		json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  json.RawMessage(`{"tools":[{"name":"web_search"},{"name":"fetch_page"}]}`),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	names, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "web_search" || names[1] != "fetch_page" {
		t.Errorf("got %v", names)
	}
}
