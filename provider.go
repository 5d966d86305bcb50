package wren

import "context"

// LMClient abstracts the chat language model backend. The orchestrator
// (C7) is the only consumer; it never assumes a specific wire protocol,
// and has no native structured tool-calling — tool invocations arrive as
// tagged text inside Content, parsed by C1.
type LMClient interface {
	// Chat sends a request and returns the complete response.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// ChatStream streams text chunks into ch as they arrive, then returns
	// the final accumulated response with usage stats. ch is closed by the
	// implementation when streaming completes or the context is canceled.
	ChatStream(ctx context.Context, req ChatRequest, ch chan<- string) (ChatResponse, error)
}

// ToolClient abstracts the external tool server. Implementations decide
// their own transport (this module ships an HTTP/JSON-RPC one in
// mcpclient); the orchestrator only knows about Call and List.
type ToolClient interface {
	// Call invokes a named tool with the given arguments and returns its
	// result payload. requestID is passed through for the tool server's
	// own tracing/correlation, not interpreted here.
	Call(ctx context.Context, requestID, name string, args map[string]any) (map[string]any, error)
	// List returns the names of tools currently available on the server,
	// used for health checks. The dispatcher's whitelist is a fixed set and
	// does not consult List.
	List(ctx context.Context) ([]string, error)
}

// HealthChecker is an optional interface an LMClient implementation may
// satisfy to provide a cheap availability probe distinct from issuing a
// full Chat call. The orchestrator's health_check operation type-asserts
// for this before falling back to a minimal Chat call.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}
