package wren

import "time"

// Role identifies who produced a ChatMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in the conversation sent to or received from the LM.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationParams carries per-request sampling knobs down to the LM client.
type GenerationParams struct {
	Temperature *float64
}

// ChatRequest is sent to an LMClient.
type ChatRequest struct {
	Messages         []ChatMessage
	Model            string
	GenerationParams *GenerationParams
}

// Usage reports token accounting for a single LM call, when the backend
// provides it. Zero values mean the backend did not report usage.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatResponse is the LM's reply to a ChatRequest.
type ChatResponse struct {
	Content string
	Usage   Usage
}

// ToolCall is a single structured tool invocation extracted from free-form
// LM output by the parser (C1). ID is synthesized locally for trace
// correlation; the tagged-text protocol has no native call ID.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
	Raw       string
}

// ParseResult is a single snapshot of parsing one LM output for tool calls.
type ParseResult struct {
	ToolCalls     []ToolCall
	TextBefore    string
	TextAfter     string
	HasIncomplete bool
}

// ToolExecution is the record of one dispatched tool call, success or
// failure. Exactly one of Result or Error is populated; Success mirrors
// which one.
type ToolExecution struct {
	ToolName   string
	Arguments  map[string]any
	Result     map[string]any
	Error      string
	ErrorCode  Code
	Success    bool
	DurationMS float64
	Timestamp  time.Time
	RequestID  string
}

// Source is a (url, title, originating tool) tuple harvested from a tool
// result by the source extractor (C3).
type Source struct {
	URL   string
	Title string
	Tool  string
}

// Citation is a validated/renumbered inline [n] reference (C4).
type Citation struct {
	Number  int
	URL     string
	Title   string
	Snippet string
}

// ResearchMode parametrizes the system prompt's source-count and depth
// directive.
type ResearchMode string

const (
	ModeQuick ResearchMode = "quick"
	ModeDeep  ResearchMode = "deep"
)

// FetchExtractMode is the default extract_mode injected into fetch_page
// calls that omit it.
type FetchExtractMode string

const (
	ExtractText     FetchExtractMode = "text"
	ExtractMarkdown FetchExtractMode = "markdown"
)

// ResearchResponse is the result of one research() call.
type ResearchResponse struct {
	Content           string
	ToolTrace         []ToolExecution
	Sources           []Source
	RequestID         string
	TotalDurationMS   float64
	Model             string
	CanSaveAsNote     bool
	SuggestedTitle    string
	FollowupQuestions []string
}

// UserMessage, SystemMessage, AssistantMessage construct ChatMessages the
// way the rest of the package expects them.
func UserMessage(text string) ChatMessage      { return ChatMessage{Role: RoleUser, Content: text} }
func SystemMessage(text string) ChatMessage    { return ChatMessage{Role: RoleSystem, Content: text} }
func AssistantMessage(text string) ChatMessage { return ChatMessage{Role: RoleAssistant, Content: text} }
