package observability

// Span attribute key names for wren spans. Within this module only
// ObservedLMClient (AttrLLM*) and ObservedToolClient (AttrTool*,
// AttrRequestID) set them; the core package's orchestrator and dispatcher
// spans use their own literal keys, and AttrQuery, AttrIteration,
// AttrSourceCount and AttrCitationCount are not set anywhere. Plain strings
// rather than attribute.Key: wren.SpanAttr carries the key as a string and
// the OTEL conversion happens once, in toOTELAttr.
const (
	AttrRequestID = "wren.request_id"
	AttrQuery     = "wren.query"
	AttrIteration = "wren.iteration"

	AttrLLMModel     = "llm.model"
	AttrLLMTokensIn  = "llm.tokens.input"
	AttrLLMTokensOut = "llm.tokens.output"

	AttrToolName       = "tool.name"
	AttrToolSuccess    = "tool.success"
	AttrToolDurationMS = "tool.duration_ms"

	AttrSourceCount   = "wren.source_count"
	AttrCitationCount = "wren.citation_count"
)
