package observability

import (
	"context"
	"time"

	"github.com/getwren/wren"
)

// ObservedLMClient wraps a wren.LMClient with tracing spans recording model
// name, token usage, and call duration — the same fields an ObservedProvider
// records for an LLM provider, adapted to wren's narrower LMClient surface.
type ObservedLMClient struct {
	inner  wren.LMClient
	tracer wren.Tracer
	model  string
}

// WrapLMClient returns an instrumented LMClient that starts a span per call.
func WrapLMClient(inner wren.LMClient, model string, tracer wren.Tracer) *ObservedLMClient {
	return &ObservedLMClient{inner: inner, tracer: tracer, model: model}
}

func (o *ObservedLMClient) Chat(ctx context.Context, req wren.ChatRequest) (wren.ChatResponse, error) {
	ctx, span := o.tracer.Start(ctx, "llm.chat", wren.StringAttr(AttrLLMModel, o.model))
	defer span.End()
	start := time.Now()

	resp, err := o.inner.Chat(ctx, req)
	o.record(span, time.Since(start), resp.Usage, err)
	return resp, err
}

func (o *ObservedLMClient) ChatStream(ctx context.Context, req wren.ChatRequest, ch chan<- string) (wren.ChatResponse, error) {
	ctx, span := o.tracer.Start(ctx, "llm.chat_stream", wren.StringAttr(AttrLLMModel, o.model))
	defer span.End()
	start := time.Now()

	resp, err := o.inner.ChatStream(ctx, req, ch)
	o.record(span, time.Since(start), resp.Usage, err)
	return resp, err
}

func (o *ObservedLMClient) record(span wren.Span, elapsed time.Duration, usage wren.Usage, err error) {
	span.SetAttr(
		wren.IntAttr(AttrLLMTokensIn, usage.InputTokens),
		wren.IntAttr(AttrLLMTokensOut, usage.OutputTokens),
		wren.Float64Attr("llm.duration_ms", float64(elapsed.Milliseconds())),
	)
	if err != nil {
		span.Error(err)
	}
}

// Healthy forwards to the wrapped client when it implements wren.HealthChecker,
// so wrapping with observability never hides an opportunistic health probe.
func (o *ObservedLMClient) Healthy(ctx context.Context) error {
	if hc, ok := o.inner.(wren.HealthChecker); ok {
		return hc.Healthy(ctx)
	}
	return nil
}

var (
	_ wren.LMClient      = (*ObservedLMClient)(nil)
	_ wren.HealthChecker = (*ObservedLMClient)(nil)
)
