package wren

import (
	"context"
	"strings"
)

const maxFollowups = 3

// GenerateFollowups issues an auxiliary LM call with a fresh, minimal
// context (no conversation history, per SPEC_FULL.md's resolution of the
// "fresh vs. inherited context" open question) asking for exactly three
// short follow-up questions, and falls back to template questions derived
// from the query stem on any error or malformed output. Never propagates
// failure to the caller (C6).
func GenerateFollowups(ctx context.Context, client LMClient, model, query, answer string, sourceTitles []string) []string {
	prompt := buildFollowupPrompt(query, answer, sourceTitles)
	resp, err := client.Chat(ctx, ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			SystemMessage("Suggest exactly three short follow-up research questions, one per line, each ending in a question mark. No numbering, no preamble."),
			UserMessage(prompt),
		},
	})
	if err != nil {
		return fallbackFollowups(query)
	}

	questions := parseFollowupLines(resp.Content)
	if len(questions) < maxFollowups {
		return fallbackFollowups(query)
	}
	return questions
}

// buildFollowupPrompt is a compact prompt: the original query, the first
// ~500 characters of the answer, and up to three source titles.
func buildFollowupPrompt(query, answer string, sourceTitles []string) string {
	var b strings.Builder
	b.WriteString("Original query: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer so far: ")
	b.WriteString(truncateRunes(answer, 500))
	if len(sourceTitles) > 0 {
		n := len(sourceTitles)
		if n > 3 {
			n = 3
		}
		b.WriteString("\n\nSources consulted: ")
		b.WriteString(strings.Join(sourceTitles[:n], "; "))
	}
	return b.String()
}

// parseFollowupLines strips leading ordinals/punctuation, keeps lines
// ending in "?" whose length exceeds 10 characters, caps at three, and
// truncates each to 80 characters.
func parseFollowupLines(text string) []string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = stripLeadingOrdinal(line)
		if !strings.HasSuffix(line, "?") {
			continue
		}
		if len(line) <= 10 {
			continue
		}
		out = append(out, truncateRunes(line, 80))
		if len(out) == maxFollowups {
			break
		}
	}
	return out
}

// stripLeadingOrdinal removes a leading "1.", "2)", "-", "*" style marker.
func stripLeadingOrdinal(line string) string {
	line = strings.TrimLeft(line, "0123456789.)-*• \t")
	return strings.TrimSpace(line)
}

// fallbackFollowups emits three template questions derived from the query
// stem. Used whenever the auxiliary LM call errors, returns nothing, or
// yields fewer than three valid questions.
func fallbackFollowups(query string) []string {
	stem := strings.TrimSpace(query)
	if stem == "" {
		stem = "this topic"
	}
	return []string{
		"What are the pros and cons of " + stem + "?",
		"What are common alternatives to " + stem + "?",
		"What are the latest developments related to " + stem + "?",
	}
}

// truncateRunes truncates s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
