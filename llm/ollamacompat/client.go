package ollamacompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getwren/wren"
)

// Client implements wren.LMClient against Ollama's native HTTP API.
//
// baseURL is the Ollama server root (e.g. "http://localhost:11434"); the
// /api/chat and /api/tags paths are appended automatically.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client (timeouts, proxies, transport).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.client = c }
}

// WithLogger attaches a logger for decode-warning diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// NewClient builds a Client talking to the Ollama server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends a non-streaming chat request and returns the complete response.
func (c *Client) Chat(ctx context.Context, req wren.ChatRequest) (wren.ChatResponse, error) {
	body := buildBody(req, false)
	resp, err := c.send(ctx, body)
	if err != nil {
		return wren.ChatResponse{}, err
	}
	defer resp.Body.Close()

	var chunk chatChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return wren.ChatResponse{}, fmt.Errorf("ollamacompat: decode response: %w", err)
	}
	return toResponse(chunk), nil
}

// ChatStream streams content deltas into ch, closing it when the NDJSON
// stream ends, then returns the final accumulated response.
func (c *Client) ChatStream(ctx context.Context, req wren.ChatRequest, ch chan<- string) (wren.ChatResponse, error) {
	body := buildBody(req, true)
	resp, err := c.send(ctx, body)
	if err != nil {
		close(ch)
		return wren.ChatResponse{}, err
	}
	defer resp.Body.Close()

	return streamNDJSON(resp.Body, ch, c.logger)
}

// Healthy implements wren.HealthChecker by probing GET /api/tags, a cheap
// endpoint that does not require loading a model.
func (c *Client) Healthy(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &wren.ErrModelUnavailable{Endpoint: c.baseURL, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &wren.ErrHTTP{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// ModelInstalled reports whether model is present in the server's tag list.
func (c *Client) ModelInstalled(ctx context.Context, model string) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return false, &wren.ErrModelUnavailable{Endpoint: c.baseURL, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, &wren.ErrHTTP{Status: resp.StatusCode, Body: string(body)}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("ollamacompat: decode tags: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == model || strings.TrimSuffix(m.Name, ":latest") == model {
			return true, nil
		}
	}
	return false, nil
}

// send marshals body and POSTs it to /api/chat, translating context
// deadlines, connection and HTTP-status failures into the wren error
// taxonomy.
func (c *Client) send(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollamacompat: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollamacompat: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &wren.ErrTimeout{Op: "chat"}
		}
		return nil, &wren.ErrModelUnavailable{Endpoint: c.baseURL, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound && strings.Contains(string(respBody), "not found") {
			return nil, &wren.ErrModelNotInstalled{Model: body.Model}
		}
		return nil, &wren.ErrHTTP{
			Status:     resp.StatusCode,
			Body:       string(respBody),
			RetryAfter: wren.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return resp, nil
}

func toResponse(c chatChunk) wren.ChatResponse {
	return wren.ChatResponse{
		Content: c.Message.Content,
		Usage: wren.Usage{
			InputTokens:  c.PromptEvalCount,
			OutputTokens: c.EvalCount,
		},
	}
}

var _ wren.LMClient = (*Client)(nil)
var _ wren.HealthChecker = (*Client)(nil)
