package wren

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPreamble = `You are a careful research assistant. You answer questions by gathering information with tools, then synthesizing a clear, well-cited answer. Cite sources inline as [n] where n is the source's position in the list you were given. Combine information from multiple sources when useful. Never invent a tool outside the catalog below. Stop calling tools once you have enough information to answer.`

// toolCatalog lists each tool's name, parameters, constraints, and one
// example invocation using the <tool_call>{…}</tool_call> envelope. Order
// is fixed so the rendered prompt is stable across calls.
var toolCatalog = []string{
	`web_search(query: string, limit: int 1..5 = 3) — search the web.
Example: <tool_call>{"name":"web_search","arguments":{"query":"go generics","limit":3}}</tool_call>`,
	`fetch_page(url: string (http/https), max_chars: int = 8000, extract_mode: "text"|"markdown" = "text") — fetch and extract a page's readable content.
Example: <tool_call>{"name":"fetch_page","arguments":{"url":"https://example.com"}}</tool_call>`,
	`save_note(title: string, content: string, tags?: list<string>, source_urls?: list<string>) — save the current findings as a note.
Example: <tool_call>{"name":"save_note","arguments":{"title":"Go generics","content":"..."}}</tool_call>`,
	`list_notes(query?: string, tags?: list<string>, limit: int = 20, offset: int = 0) — list previously saved notes.
Example: <tool_call>{"name":"list_notes","arguments":{}}</tool_call>`,
	`get_note(id: string (UUID)) — fetch one saved note by id.
Example: <tool_call>{"name":"get_note","arguments":{"id":"..."}}</tool_call>`,
}

// modeDirective returns the source-count and depth directive appended to
// the system prompt for the given research mode.
func modeDirective(mode ResearchMode) string {
	switch mode {
	case ModeDeep:
		return "Research mode: deep. Consult up to 7 search results and read at least 5 pages before answering. Provide a detailed analysis with comparisons where relevant."
	default:
		return "Research mode: quick. Consult up to 5 search results and read at least 3 pages before answering. Keep the answer under ~250 words, using bullet points where helpful."
	}
}

// BuildSystemPrompt composes the deterministic system prompt: preamble,
// tool catalog, behavioral directives, and the mode directive (C2).
func BuildSystemPrompt(mode ResearchMode) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nAvailable tools:\n")
	for _, t := range toolCatalog {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(modeDirective(mode))
	return b.String()
}

// FormatToolResult renders a successful tool result as the
// <tool_result name="T">…</tool_result> envelope appended to the
// transcript, with a tool-specific human-readable body.
func FormatToolResult(name string, result map[string]any) string {
	body := formatResultBody(name, result)
	return fmt.Sprintf("<tool_result name=%q>%s</tool_result>", name, body)
}

// FormatToolError renders a failed tool execution as the
// <tool_error name="T" code="C">message</tool_error> envelope.
func FormatToolError(name, code, message string) string {
	return fmt.Sprintf("<tool_error name=%q code=%q>%s</tool_error>", name, code, message)
}

// formatResultBody renders a tool-specific human-readable body for a
// successful result payload. Unknown tools fall back to raw JSON so
// nothing is silently dropped from the LM's view.
func formatResultBody(name string, result map[string]any) string {
	switch name {
	case "web_search":
		items, _ := result["results"].([]any)
		var b strings.Builder
		for i, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			title, _ := m["title"].(string)
			url, _ := m["url"].(string)
			fmt.Fprintf(&b, "%d. %s — %s\n", i+1, title, url)
		}
		return b.String()
	case "fetch_page":
		title, _ := result["title"].(string)
		url, _ := result["url"].(string)
		content, _ := result["content"].(string)
		const maxBody = 4000
		if len([]rune(content)) > maxBody {
			r := []rune(content)
			content = string(r[:maxBody]) + "... [truncated]"
		}
		return fmt.Sprintf("%s (%s)\n%s", title, url, content)
	case "get_note", "save_note", "list_notes":
		raw, err := json.Marshal(result)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		raw, err := json.Marshal(result)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
