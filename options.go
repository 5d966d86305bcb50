package wren

import (
	"log/slog"
	"time"
)

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithModel sets the model name passed to the LM client on every request.
func WithModel(model string) Option {
	return func(o *Orchestrator) { o.model = model }
}

// WithResearchMode sets the initial research mode (quick|deep). Invalid
// values are ignored, matching SetResearchMode's validation.
func WithResearchMode(mode ResearchMode) Option {
	return func(o *Orchestrator) { o.SetResearchMode(mode) }
}

// WithFetchExtractMode sets the initial fetch_page extract mode.
func WithFetchExtractMode(mode FetchExtractMode) Option {
	return func(o *Orchestrator) { o.SetFetchExtractMode(mode) }
}

// WithTemperature sets the initial sampling temperature. Values outside
// [0,1] are ignored, matching SetTemperature's validation.
func WithTemperature(t float64) Option {
	return func(o *Orchestrator) { o.SetTemperature(t) }
}

// WithTracer attaches an OpenTelemetry-backed (or other) Tracer. Defaults
// to a no-op tracer when unset.
func WithTracer(tr Tracer) Option {
	return func(o *Orchestrator) {
		if tr != nil {
			o.tracer = tr
		}
	}
}

// WithLogger attaches a *slog.Logger. Defaults to a discard logger when unset.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxIter overrides the iteration cap (default 5). Values ≤ 0 are ignored.
func WithMaxIter(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIter = n
		}
	}
}

// WithToolTimeout overrides the per-tool-call deadline (default 30s).
func WithToolTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.toolTimeout = d
		}
	}
}
