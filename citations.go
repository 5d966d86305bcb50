package wren

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// citationRegex matches an inline [n] citation marker.
var citationRegex = regexp.MustCompile(`\[(\d+)\]`)

// sourcesBlockRegex detects an existing "**Sources:**" block so
// AddSources can be idempotent.
var sourcesBlockRegex = regexp.MustCompile(`(?m)^\*\*Sources:\*\*`)

// ValidateCitations reports, for every [n] marker in content, whether n
// falls within 1..nSources. The returned map is keyed by the marker's
// integer value; a marker appearing multiple times is reported once.
func ValidateCitations(content string, nSources int) map[int]bool {
	matches := citationRegex.FindAllStringSubmatch(content, -1)
	out := make(map[int]bool, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out[n] = n >= 1 && n <= nSources
	}
	return out
}

// RenumberCitations collects the set of marker values present in content,
// sorts them ascending, and rewrites them to 1..m in that order, returning
// the rewritten content and the old→new mapping. Idempotent:
// RenumberCitations(RenumberCitations(x)) == RenumberCitations(x).
func RenumberCitations(content string) (string, map[int]int) {
	seen := map[int]bool{}
	matches := citationRegex.FindAllStringSubmatch(content, -1)
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[n] = true
	}
	old := make([]int, 0, len(seen))
	for n := range seen {
		old = append(old, n)
	}
	sort.Ints(old)

	mapping := make(map[int]int, len(old))
	for i, n := range old {
		mapping[n] = i + 1
	}

	rewritten := citationRegex.ReplaceAllStringFunc(content, func(m string) string {
		sub := citationRegex.FindStringSubmatch(m)
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return m
		}
		newN, ok := mapping[n]
		if !ok {
			return m
		}
		return fmt.Sprintf("[%d]", newN)
	})

	return rewritten, mapping
}

// AddSources appends a "**Sources:**" block of "[i] [title](url)" lines to
// content, unless such a block already exists (idempotent: a second call
// on already-annotated content is a no-op).
func AddSources(content string, sources []Source) string {
	if sourcesBlockRegex.MatchString(content) {
		return content
	}
	if len(sources) == 0 {
		return content
	}
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n**Sources:**\n")
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(&b, "[%d] [%s](%s)\n", i+1, title, s.URL)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
