package wren

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// DefaultMaxIter is the iteration ceiling MAX_ITER from spec.md §4.7.2: the
// number of THINK/PARSE/EXECUTE cycles allowed before a forced-summary
// turn runs.
const DefaultMaxIter = 5

const forcedSummaryPrompt = "Based on all the information gathered above, please provide your final answer. Do not make any more tool calls."

const emptyAnswerDiagnostic = "I wasn't able to produce a complete answer for this query. Please review the sources gathered below."

// Orchestrator drives the bounded THINK/PARSE/EXECUTE reasoning loop (C7).
// State is per-instance and is not safe for concurrent queries — callers
// needing concurrency must use one Orchestrator per in-flight query.
type Orchestrator struct {
	lm    LMClient
	tools ToolClient

	model            string
	researchMode     ResearchMode
	fetchExtractMode FetchExtractMode
	temperature      float64

	maxIter     int
	toolTimeout time.Duration

	tracer Tracer
	logger *slog.Logger

	history   []ChatMessage
	requestID string
}

// NewOrchestrator constructs an Orchestrator over the given LM and tool
// clients. Defaults: research mode "quick", fetch extract mode "text",
// temperature 0.3, MAX_ITER=5, 30s per-tool timeout, no-op tracer, discard
// logger.
func NewOrchestrator(lm LMClient, tools ToolClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		lm:               lm,
		tools:            tools,
		researchMode:     ModeQuick,
		fetchExtractMode: ExtractText,
		temperature:      0.3,
		maxIter:          DefaultMaxIter,
		toolTimeout:      defaultToolTimeout,
		tracer:           noopTracer{},
		logger:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetResearchMode validates and applies a new research mode. Out-of-range
// values are silently ignored.
func (o *Orchestrator) SetResearchMode(mode ResearchMode) {
	if mode == ModeQuick || mode == ModeDeep {
		o.researchMode = mode
	}
}

// SetFetchExtractMode validates and applies a new fetch extract mode.
func (o *Orchestrator) SetFetchExtractMode(mode FetchExtractMode) {
	if mode == ExtractText || mode == ExtractMarkdown {
		o.fetchExtractMode = mode
	}
}

// SetModel applies a new model name. Empty values are ignored.
func (o *Orchestrator) SetModel(model string) {
	if model != "" {
		o.model = model
	}
}

// SetTemperature validates and applies a new temperature in [0,1].
func (o *Orchestrator) SetTemperature(t float64) {
	if t >= 0 && t <= 1 {
		o.temperature = t
	}
}

// ClearHistory discards the accumulated conversation history.
func (o *Orchestrator) ClearHistory() {
	o.history = nil
}

// dispatcher builds a Dispatcher bound to this orchestrator's current
// configuration and callbacks.
func (o *Orchestrator) dispatcher(onStart OnToolStart, onComplete OnToolComplete) *Dispatcher {
	return &Dispatcher{
		Client:           o.tools,
		Timeout:          o.toolTimeout,
		FetchExtractMode: o.fetchExtractMode,
		Tracer:           o.tracer,
		OnStart:          onStart,
		OnComplete:       onComplete,
	}
}

// genParams builds the GenerationParams threaded to the LM client for
// every request this orchestrator issues.
func (o *Orchestrator) genParams() *GenerationParams {
	t := o.temperature
	return &GenerationParams{Temperature: &t}
}

// Research runs the full reasoning loop for one query and returns the
// finalized response (C7 public operation "research"). onTextChunk, if
// set, fires once with the first THINK's raw content, matching the
// non-streaming research() contract in spec.md §6.3.
func (o *Orchestrator) Research(ctx context.Context, query string, onToolStart OnToolStart, onToolComplete OnToolComplete, onTextChunk func(string)) (ResearchResponse, error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "wren.orchestrator.research", StringAttr("research_mode", string(o.researchMode)))
	defer span.End()

	o.requestID = NewRequestID()
	messages := o.buildInitialMessages(query)

	dispatch := o.dispatcher(onToolStart, onToolComplete)

	var trace []ToolExecution
	var rawSources []Source
	var finalContent string
	var finalized bool

	for iter := 0; iter < o.maxIter; iter++ {
		resp, err := o.lm.Chat(ctx, ChatRequest{Messages: messages, Model: o.model, GenerationParams: o.genParams()})
		if err != nil {
			span.Error(err)
			return ResearchResponse{}, NewAgentError(CodeModelUnavailable, err.Error())
		}
		if iter == 0 && onTextChunk != nil {
			safeTextChunk(onTextChunk, resp.Content)
		}

		parsed := ParseToolCalls(resp.Content)
		if len(parsed.ToolCalls) == 0 {
			finalContent = resp.Content
			finalized = true
			break
		}

		messages = append(messages, AssistantMessage(resp.Content))

		var resultTexts []string
		for _, tc := range parsed.ToolCalls {
			exec := dispatch.Dispatch(ctx, o.requestID, tc)
			trace = append(trace, exec)
			if exec.Success {
				rawSources = append(rawSources, ExtractSources(tc.Name, exec.Result)...)
				resultTexts = append(resultTexts, FormatToolResult(tc.Name, exec.Result))
			} else {
				resultTexts = append(resultTexts, FormatToolError(tc.Name, string(exec.ErrorCode), exec.Error))
			}
		}
		messages = append(messages, UserMessage(strings.Join(resultTexts, "\n")))
	}

	if !finalized {
		o.logger.Warn("iteration cap reached, forcing summary", "max_iter", o.maxIter, "request_id", o.requestID)
		messages = append(messages, UserMessage(forcedSummaryPrompt))
		resp, err := o.lm.Chat(ctx, ChatRequest{Messages: messages, Model: o.model, GenerationParams: o.genParams()})
		if err != nil {
			span.Error(err)
			return ResearchResponse{}, NewAgentError(CodeModelUnavailable, err.Error())
		}
		content := truncateAtToolCallTag(resp.Content)
		if strings.TrimSpace(content) == "" {
			content = emptyAnswerDiagnostic
		}
		finalContent = content
	}

	return o.finalize(ctx, query, finalContent, trace, rawSources, start), nil
}

// ResearchStream runs the same loop as Research but forwards LM text
// chunks to the caller as they arrive, suppressing anything inside an
// in-flight <tool_call> region per the NORMAL/IN_CALL state machine in
// stream.go. The returned channel is closed when the query
// completes; call wait() afterward to obtain the finalized response (or
// the error that aborted the query).
func (o *Orchestrator) ResearchStream(ctx context.Context, query string, onToolStart OnToolStart, onToolComplete OnToolComplete) (chunks <-chan string, wait func() (ResearchResponse, error)) {
	out := make(chan string)
	resultCh := make(chan streamOutcome, 1)

	go func() {
		defer close(out)
		resp, err := o.runStream(ctx, query, onToolStart, onToolComplete, out)
		resultCh <- streamOutcome{resp: resp, err: err}
	}()

	return out, func() (ResearchResponse, error) {
		o := <-resultCh
		return o.resp, o.err
	}
}

type streamOutcome struct {
	resp ResearchResponse
	err  error
}

func (o *Orchestrator) runStream(ctx context.Context, query string, onToolStart OnToolStart, onToolComplete OnToolComplete, out chan<- string) (ResearchResponse, error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "wren.orchestrator.research_stream", StringAttr("research_mode", string(o.researchMode)))
	defer span.End()

	o.requestID = NewRequestID()
	messages := o.buildInitialMessages(query)
	dispatch := o.dispatcher(onToolStart, onToolComplete)

	var trace []ToolExecution
	var rawSources []Source
	var finalContent string
	var finalized bool

	for iter := 0; iter < o.maxIter; iter++ {
		sup := newSuppressor(out)
		mid := make(chan string)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for chunk := range mid {
				sup.feed(chunk)
			}
		}()
		resp, err := o.lm.ChatStream(ctx, ChatRequest{Messages: messages, Model: o.model, GenerationParams: o.genParams()}, mid)
		<-done
		if err != nil {
			span.Error(err)
			return ResearchResponse{}, NewAgentError(CodeModelUnavailable, err.Error())
		}

		parsed := ParseToolCalls(resp.Content)
		if len(parsed.ToolCalls) == 0 {
			finalContent = resp.Content
			finalized = true
			break
		}

		messages = append(messages, AssistantMessage(resp.Content))

		var resultTexts []string
		for _, tc := range parsed.ToolCalls {
			exec := dispatch.Dispatch(ctx, o.requestID, tc)
			trace = append(trace, exec)
			if exec.Success {
				rawSources = append(rawSources, ExtractSources(tc.Name, exec.Result)...)
				resultTexts = append(resultTexts, FormatToolResult(tc.Name, exec.Result))
			} else {
				resultTexts = append(resultTexts, FormatToolError(tc.Name, string(exec.ErrorCode), exec.Error))
			}
		}
		messages = append(messages, UserMessage(strings.Join(resultTexts, "\n")))
	}

	if !finalized {
		o.logger.Warn("iteration cap reached, forcing summary", "max_iter", o.maxIter, "request_id", o.requestID)
		messages = append(messages, UserMessage(forcedSummaryPrompt))
		resp, err := o.lm.Chat(ctx, ChatRequest{Messages: messages, Model: o.model, GenerationParams: o.genParams()})
		if err != nil {
			span.Error(err)
			return ResearchResponse{}, NewAgentError(CodeModelUnavailable, err.Error())
		}
		content := truncateAtToolCallTag(resp.Content)
		if strings.TrimSpace(content) == "" {
			content = emptyAnswerDiagnostic
		}
		finalContent = content
	}

	return o.finalize(ctx, query, finalContent, trace, rawSources, start), nil
}

// buildInitialMessages assembles INIT's message list: mode-aware system
// prompt, prior conversation history, then the user query.
func (o *Orchestrator) buildInitialMessages(query string) []ChatMessage {
	messages := make([]ChatMessage, 0, len(o.history)+2)
	messages = append(messages, SystemMessage(BuildSystemPrompt(o.researchMode)))
	messages = append(messages, o.history...)
	messages = append(messages, UserMessage(query))
	return messages
}

// finalize performs FINALIZE: dedupe sources, derive a suggested title,
// determine can_save_as_note, run the follow-up generator with a fresh
// context, apply citation post-processing, grow conversation_history by
// exactly one (user, assistant) pair, and compute total duration.
func (o *Orchestrator) finalize(ctx context.Context, query, content string, trace []ToolExecution, rawSources []Source, start time.Time) ResearchResponse {
	sources := DedupeSources(rawSources)

	canSave := content != "" && !strings.HasPrefix(content, "❌")

	titles := make([]string, 0, 3)
	for i, s := range sources {
		if i == 3 {
			break
		}
		titles = append(titles, s.Title)
	}
	followups := GenerateFollowups(ctx, o.lm, o.model, query, content, titles)

	o.history = append(o.history, UserMessage(query), AssistantMessage(content))

	rendered, _ := RenumberCitations(content)
	rendered = AddSources(rendered, sources)

	return ResearchResponse{
		Content:           rendered,
		ToolTrace:         trace,
		Sources:           sources,
		RequestID:         o.requestID,
		TotalDurationMS:   float64(time.Since(start).Microseconds()) / 1000.0,
		Model:             o.model,
		CanSaveAsNote:     canSave,
		SuggestedTitle:    deriveSuggestedTitle(query),
		FollowupQuestions: followups,
	}
}

var titlePrefixRegex = regexp.MustCompile(`(?i)^(what is|what are|how to|how do|why|can you)\s+`)

// deriveSuggestedTitle implements the suggested-title derivation algorithm
// from spec.md §4.7.4.
func deriveSuggestedTitle(query string) string {
	s := strings.TrimSpace(query)
	s = titlePrefixRegex.ReplaceAllString(s, "")
	s = capitalizeFirst(s)

	if len(s) > 70 {
		r := []rune(s)
		s = string(r[:67]) + "..."
	}
	if len(s) < 60 {
		s = "Research: " + s
	}
	if len(s) > 80 {
		r := []rune(s)
		s = string(r[:80])
	}
	return s
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// truncateAtToolCallTag truncates content at the first occurrence of an
// opening <tool_call> tag, used for the forced-summary turn's guard
// against the LM still emitting tool-call syntax.
func truncateAtToolCallTag(content string) string {
	loc := openTagRegex.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return content[:loc[0]]
}

// safeTextChunk wraps an on_text_chunk callback with panic recovery so a
// misbehaving caller hook cannot corrupt orchestrator state.
func safeTextChunk(fn func(string), chunk string) {
	defer func() { recover() }()
	fn(chunk)
}

// HealthStatus is the composite availability result of health_check.
type HealthStatus struct {
	LMAvailable         bool
	LMError             string
	ToolServerAvailable bool
	ToolServerError     string
}

// HealthCheck reports composite availability for the LM and tool server.
func (o *Orchestrator) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{}

	var lmErr error
	if hc, ok := o.lm.(HealthChecker); ok {
		lmErr = hc.Healthy(ctx)
	} else {
		_, lmErr = o.lm.Chat(ctx, ChatRequest{Messages: []ChatMessage{UserMessage("ping")}, Model: o.model})
	}
	status.LMAvailable = lmErr == nil
	if lmErr != nil {
		status.LMError = lmErr.Error()
	}

	_, toolErr := o.tools.List(ctx)
	status.ToolServerAvailable = toolErr == nil
	if toolErr != nil {
		status.ToolServerError = toolErr.Error()
	}

	return status
}
