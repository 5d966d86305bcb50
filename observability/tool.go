package observability

import (
	"context"
	"time"

	"github.com/getwren/wren"
)

// ObservedToolClient wraps a wren.ToolClient with a tracing span per call,
// recording the tool name, success/failure, and duration.
type ObservedToolClient struct {
	inner  wren.ToolClient
	tracer wren.Tracer
}

// WrapToolClient returns an instrumented ToolClient that starts a span per
// tools/call invocation.
func WrapToolClient(inner wren.ToolClient, tracer wren.Tracer) *ObservedToolClient {
	return &ObservedToolClient{inner: inner, tracer: tracer}
}

func (o *ObservedToolClient) Call(ctx context.Context, requestID, name string, args map[string]any) (map[string]any, error) {
	ctx, span := o.tracer.Start(ctx, "tool.call",
		wren.StringAttr(AttrToolName, name),
		wren.StringAttr(AttrRequestID, requestID),
	)
	defer span.End()
	start := time.Now()

	result, err := o.inner.Call(ctx, requestID, name, args)

	span.SetAttr(
		wren.BoolAttr(AttrToolSuccess, err == nil),
		wren.Float64Attr(AttrToolDurationMS, float64(time.Since(start).Milliseconds())),
	)
	if err != nil {
		span.Error(err)
	}
	return result, err
}

func (o *ObservedToolClient) List(ctx context.Context) ([]string, error) {
	ctx, span := o.tracer.Start(ctx, "tool.list")
	defer span.End()
	names, err := o.inner.List(ctx)
	if err != nil {
		span.Error(err)
	}
	return names, err
}

var _ wren.ToolClient = (*ObservedToolClient)(nil)
