package wren

import (
	"encoding/json"
	"regexp"
	"strings"
)

// toolCallRegex matches complete <tool_call>...</tool_call> regions,
// case-insensitive and tolerant of surrounding whitespace/newlines inside
// the tags.
var toolCallRegex = regexp.MustCompile(`(?is)<tool_call>(.*?)</tool_call>`)

// openTagRegex detects an opening tag, used to check for an unterminated
// call when no complete region follows it.
var openTagRegex = regexp.MustCompile(`(?is)<tool_call>`)

// closeTagRegex detects a closing tag.
var closeTagRegex = regexp.MustCompile(`(?is)</tool_call>`)

// rawToolCall is the shape a tool-call payload must parse into. Arguments
// is left as json.RawMessage so we can distinguish "absent" from "present
// but not an object" before decoding it into map[string]any.
type rawToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ParseToolCalls extracts structured tool invocations from free-form LM
// output text per the tagged <tool_call>{...}</tool_call> protocol (C1).
func ParseToolCalls(text string) ParseResult {
	locs := toolCallRegex.FindAllStringSubmatchIndex(text, -1)

	result := ParseResult{}
	if len(locs) == 0 {
		result.TextBefore = text
		result.TextAfter = ""
		result.HasIncomplete = hasIncompleteCall(text)
		return result
	}

	result.TextBefore = text[:locs[0][0]]
	result.TextAfter = text[locs[len(locs)-1][1]:]

	for _, loc := range locs {
		raw := text[loc[2]:loc[3]]
		full := text[loc[0]:loc[1]]
		tc, ok := parseToolCallPayload(raw)
		if !ok {
			continue
		}
		tc.ID = NewRequestID()
		tc.Raw = full
		result.ToolCalls = append(result.ToolCalls, tc)
	}

	// has_incomplete is only meaningful for an opening tag that appears
	// after the last complete region closed (mid-stream partial call).
	result.HasIncomplete = hasIncompleteCall(result.TextAfter)
	return result
}

// hasIncompleteCall reports whether text contains an opening <tool_call>
// tag with no matching closing tag — a streaming mid-call signal.
func hasIncompleteCall(text string) bool {
	opens := openTagRegex.FindAllStringIndex(text, -1)
	if len(opens) == 0 {
		return false
	}
	closes := closeTagRegex.FindAllStringIndex(text, -1)
	return len(closes) < len(opens)
}

// parseToolCallPayload applies lenient repair and decodes one tool-call
// body. Returns ok=false for any payload the parser must silently skip
// rather than fail the turn on: non-object JSON, missing string name, or
// an arguments field present but not an object.
func parseToolCallPayload(raw string) (ToolCall, bool) {
	payload := repairToolCallJSON(raw)

	var rtc rawToolCall
	if err := json.Unmarshal([]byte(payload), &rtc); err != nil {
		return ToolCall{}, false
	}
	if rtc.Name == "" {
		return ToolCall{}, false
	}

	args := map[string]any{}
	if len(rtc.Arguments) > 0 && string(rtc.Arguments) != "null" {
		if err := json.Unmarshal(rtc.Arguments, &args); err != nil {
			return ToolCall{}, false
		}
	}

	return ToolCall{Name: rtc.Name, Arguments: args}, true
}

// repairToolCallJSON strips a surrounding fenced-code marker if present and
// substitutes single for double quotes when the payload appears to use
// single-quoted strings and no double quotes at all.
func repairToolCallJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}

// IsWaitingForToolCall reports whether buf (the text accumulated so far in
// a streaming response) has an opening <tool_call> tag not yet matched by
// a closing tag. Used by the streaming suppression state machine to decide
// whether to withhold forwarding text to the caller.
func IsWaitingForToolCall(buf string) bool {
	return hasIncompleteCall(buf)
}
