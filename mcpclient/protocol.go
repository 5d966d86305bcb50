// Package mcpclient implements wren.ToolClient as a JSON-RPC 2.0 client over
// HTTP POST, calling the tools/list and tools/call methods of an external
// tool server. The wire shapes mirror the Model Context Protocol.
package mcpclient

import "encoding/json"

// rpcRequest is an outgoing JSON-RPC 2.0 request. For tools/call, ID is the
// caller-supplied request ID so the server and client traces correlate;
// tools/list uses a freshly generated ID.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse is an incoming JSON-RPC 2.0 response. Exactly one of Result
// or Error is populated on a well-formed response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toolCallParams is the params payload for a tools/call request.
type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// toolsListResult is the result payload for a tools/list response.
type toolsListResult struct {
	Tools []toolDescriptor `json:"tools"`
}

// toolDescriptor describes one tool the server exposes; wren only needs the
// name to build its health-check tool list.
type toolDescriptor struct {
	Name string `json:"name"`
}
