package wren

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Code is a stable machine-readable error classification returned to
// callers alongside a human-readable message.
type Code string

const (
	// Validation errors
	CodeInvalidRequest   Code = "invalid_request"
	CodeMissingParameter Code = "missing_parameter"
	CodeInvalidURL       Code = "invalid_url"

	// Search errors
	CodeSearchFailed      Code = "search_failed"
	CodeSearchTimeout     Code = "search_timeout"
	CodeSearchNoResults   Code = "search_no_results"
	CodeSearchRateLimited Code = "search_rate_limited"

	// Fetch errors
	CodeFetchFailed      Code = "fetch_failed"
	CodeFetchTimeout     Code = "fetch_timeout"
	CodeFetchBlocked     Code = "fetch_blocked"
	CodeFetchInvalidURL  Code = "fetch_invalid_url"
	CodeFetchContentType Code = "fetch_content_type"

	// Note errors
	CodeNoteNotFound        Code = "note_not_found"
	CodeNoteSaveFailed      Code = "note_save_failed"
	CodeNoteTitleRequired   Code = "note_title_required"
	CodeNoteContentRequired Code = "note_content_required"
	CodeNoteTitleTooLong    Code = "note_title_too_long"
	CodeNoteTooManyTags     Code = "note_too_many_tags"
	CodeNotesDBUnavailable  Code = "notes_db_unavailable"
	CodeNotesQueryFailed    Code = "notes_query_failed"

	// Service errors
	CodeModelUnavailable      Code = "ollama_unavailable"
	CodeModelNotInstalled     Code = "ollama_model_not_found"
	CodeModelTimeout          Code = "ollama_timeout"
	CodeToolServerUnavailable Code = "mcp_server_unavailable"
	CodeToolFailed            Code = "mcp_tool_failed"

	// Orchestrator-specific errors (no original_source equivalent: the
	// source-language implementation has no tagged-text tool-call parser or
	// fixed tool whitelist to reject against)
	CodeInvalidTool         Code = "invalid_tool"
	CodeMalformedToolCall   Code = "malformed_tool_call"
	CodeIterationCapReached Code = "iteration_cap_reached"

	// Internal errors
	CodeInternal            Code = "internal_error"
	CodeOrchestrationFailed Code = "orchestration_failed"
)

// suggestions carries forward the per-code recovery suggestion text from
// the source implementation's error-message catalog, minus the UI-only
// title/icon/steps fields wren has no surface to render.
var suggestions = map[Code]string{
	CodeInvalidRequest:        "Check your input and try again.",
	CodeMissingParameter:      "Provide all required fields.",
	CodeInvalidURL:            "Provide a valid HTTP or HTTPS URL.",
	CodeSearchFailed:          "Try again in a moment, or rephrase your query.",
	CodeSearchTimeout:         "Try a simpler query or wait and try again.",
	CodeSearchNoResults:       "Try different keywords or a broader search term.",
	CodeSearchRateLimited:     "Wait a minute before searching again.",
	CodeFetchFailed:           "Check that the URL is correct and the site is accessible.",
	CodeFetchTimeout:          "The site may be slow. Try again or use a different source.",
	CodeFetchBlocked:          "Try opening the link directly in a browser instead.",
	CodeFetchInvalidURL:       "Check the URL format and try again.",
	CodeFetchContentType:      "Try a different page or an HTML article URL.",
	CodeNoteNotFound:          "It may have been deleted. Try listing notes again.",
	CodeNoteSaveFailed:        "Try again in a moment.",
	CodeNoteTitleRequired:     "Add a title and try saving again.",
	CodeNoteContentRequired:   "Add some content and try saving again.",
	CodeNoteTitleTooLong:      "Shorten the title to 200 characters or less.",
	CodeNoteTooManyTags:       "Keep up to 10 tags and try again.",
	CodeNotesDBUnavailable:    "The notes database may need to restart.",
	CodeNotesQueryFailed:      "Try a simpler search query.",
	CodeModelUnavailable:      "Make sure Ollama is installed and running.",
	CodeModelNotInstalled:     "Pull the model with `ollama pull <model>` and retry.",
	CodeModelTimeout:          "Try a shorter query or wait and try again.",
	CodeToolServerUnavailable: "The tool server needs to be restarted.",
	CodeToolFailed:            "Try again or use a different approach.",
	CodeInvalidTool:           "This tool is not in the supported catalog.",
	CodeMalformedToolCall:     "Retry with a single well-formed tool call.",
	CodeIterationCapReached:   "Ask a narrower question to finish within fewer tool calls.",
	CodeInternal:              "Please try again. If the problem persists, restart the application.",
	CodeOrchestrationFailed:   "Try rephrasing your question or breaking it into smaller parts.",
}

// SuggestionFor returns the default recovery suggestion registered for a
// code, or the empty string if none is registered.
func SuggestionFor(code Code) string {
	return suggestions[code]
}

// AgentError is the structured error shape returned from the orchestrator's
// service-level failures (errors that abort the query, as opposed to
// failures recovered into the transcript as a failed ToolExecution).
type AgentError struct {
	Code       Code
	Message    string
	Suggestion string
	Details    map[string]any
}

func (e *AgentError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAgentError builds an AgentError, filling Suggestion from the default
// table for code if one is registered.
func NewAgentError(code Code, message string) *AgentError {
	return &AgentError{Code: code, Message: message, Suggestion: suggestions[code]}
}

// ErrHTTP reports a non-2xx HTTP response from an external collaborator.
// RetryAfter is populated when the response carries a Retry-After header,
// for use as a floor on the retry backoff delay.
type ErrHTTP struct {
	Status     int
	Body       string
	RetryAfter time.Duration
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// ErrModelUnavailable indicates the LM backend could not be reached at all
// (connection refused, DNS failure).
type ErrModelUnavailable struct {
	Endpoint string
	Cause    error
}

func (e *ErrModelUnavailable) Error() string {
	return fmt.Sprintf("model unavailable at %s: %v", e.Endpoint, e.Cause)
}

func (e *ErrModelUnavailable) Unwrap() error { return e.Cause }

// ErrModelNotInstalled indicates the backend was reached but does not have
// the requested model pulled/available.
type ErrModelNotInstalled struct {
	Model string
}

func (e *ErrModelNotInstalled) Error() string {
	return fmt.Sprintf("model %q not installed", e.Model)
}

// ErrTimeout indicates a context deadline was exceeded waiting on an
// external collaborator.
type ErrTimeout struct {
	Op string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("timeout during %s", e.Op)
}

// ToolProtocolError is a JSON-RPC level error returned by the tool server
// for an otherwise successful HTTP round trip (e.g. unknown method, invalid
// params). Distinguished from transport-level errors so the dispatcher can
// fold it into a failed ToolExecution rather than aborting the query.
type ToolProtocolError struct {
	RPCCode int
	Message string
}

func (e *ToolProtocolError) Error() string {
	return fmt.Sprintf("tool protocol error %d: %s", e.RPCCode, e.Message)
}

// ServiceError is a transport-level failure talking to the tool server
// (connection refused, timeout) as opposed to a protocol-level one.
type ServiceError struct {
	Op    string
	Cause error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("tool server %s: %v", e.Op, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// ParseRetryAfter parses an HTTP Retry-After header value, which is either
// a number of seconds or an HTTP-date. Returns 0 if empty or unparseable.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(header); err == nil {
		if d := time.Until(when); d > 0 {
			return d
		}
	}
	return 0
}
