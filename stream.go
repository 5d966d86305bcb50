package wren

import "strings"

const openTagLiteral = "<tool_call>"
const closeTagLiteral = "</tool_call>"

// suppressor implements the streaming tool-call suppression state machine:
// NORMAL → IN_CALL on seeing <tool_call>, back to
// NORMAL on </tool_call>. Only text seen while in NORMAL state — and never
// any substring of the tag markers themselves — is forwarded to out.
type suppressor struct {
	out     chan<- string
	pending string
	inCall  bool
}

func newSuppressor(out chan<- string) *suppressor {
	return &suppressor{out: out}
}

// feed processes one newly arrived chunk of LM output, forwarding any
// newly-safe text to out. Chunks may split a tag across calls; feed holds
// back a suffix that could be the start of a tag until more text arrives.
func (s *suppressor) feed(chunk string) {
	s.pending += chunk
	for {
		if !s.inCall {
			idx := indexFoldLiteral(s.pending, openTagLiteral)
			if idx == -1 {
				safeLen := len(s.pending) - partialPrefixSuffixLen(s.pending, openTagLiteral)
				if safeLen > 0 {
					s.emit(s.pending[:safeLen])
					s.pending = s.pending[safeLen:]
				}
				return
			}
			if idx > 0 {
				s.emit(s.pending[:idx])
			}
			s.pending = s.pending[idx:]
			s.inCall = true
			continue
		}

		idx := indexFoldLiteral(s.pending, closeTagLiteral)
		if idx == -1 {
			return
		}
		end := idx + len(closeTagLiteral)
		s.pending = s.pending[end:]
		s.inCall = false
	}
}

func (s *suppressor) emit(text string) {
	if text == "" {
		return
	}
	s.out <- text
}

// indexFoldLiteral returns the index of the first case-insensitive
// occurrence of literal in s, or -1.
func indexFoldLiteral(s, literal string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(literal))
}

// partialPrefixSuffixLen returns the length of the longest suffix of s
// that case-insensitively matches a (possibly full) prefix of literal,
// capped at len(literal)-1 — the maximum amount of text that must be held
// back because it might be the start of literal in a later chunk.
func partialPrefixSuffixLen(s, literal string) int {
	maxLen := len(literal) - 1
	if len(s) < maxLen {
		maxLen = len(s)
	}
	for k := maxLen; k > 0; k-- {
		suffix := strings.ToLower(s[len(s)-k:])
		prefix := strings.ToLower(literal[:k])
		if suffix == prefix {
			return k
		}
	}
	return 0
}
