package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/getwren/wren"
)

// Client implements wren.ToolClient over JSON-RPC 2.0 HTTP POST, per
// SPEC_FULL.md's tool-server transport contract: two methods (tools/list,
// tools/call), caller-supplied request IDs, and a strict split between
// transport failures (wren.ServiceError) and protocol-level failures
// (wren.ToolProtocolError).
type Client struct {
	endpoint string
	client   *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client (timeouts, proxies, transport).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.client = c }
}

// NewClient builds a Client that POSTs JSON-RPC requests to endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{endpoint: endpoint, client: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes tools/call with the given name and arguments, using
// requestID as the JSON-RPC id so tool-server logs and wren's ToolExecution
// trace correlate on the same identifier.
func (c *Client) Call(ctx context.Context, requestID, name string, args map[string]any) (map[string]any, error) {
	var result map[string]any
	raw, err := c.do(ctx, requestID, "tools/call", toolCallParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcpclient: decode tools/call result: %w", err)
	}
	return result, nil
}

// List invokes tools/list and returns the tool names the server exposes,
// used opportunistically for health checks.
func (c *Client) List(ctx context.Context) ([]string, error) {
	raw, err := c.do(ctx, wren.NewRequestID(), "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result toolsListResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcpclient: decode tools/list result: %w", err)
	}
	names := make([]string, len(result.Tools))
	for i, t := range result.Tools {
		names[i] = t.Name
	}
	return names, nil
}

// do sends one JSON-RPC request and returns the raw result payload, or a
// ServiceError (transport) / ToolProtocolError (JSON-RPC error object).
func (c *Client) do(ctx context.Context, id, method string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("mcpclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &wren.ServiceError{Op: method, Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &wren.ServiceError{Op: method, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &wren.ServiceError{Op: method, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &wren.ServiceError{Op: method, Cause: &wren.ErrHTTP{
			Status:     resp.StatusCode,
			Body:       string(body),
			RetryAfter: wren.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, &wren.ServiceError{Op: method, Cause: fmt.Errorf("decode JSON-RPC envelope: %w", err)}
	}

	if rpcResp.Error != nil {
		return nil, &wren.ToolProtocolError{RPCCode: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}

	return rpcResp.Result, nil
}

var _ wren.ToolClient = (*Client)(nil)
