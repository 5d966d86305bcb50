package wren

// ExtractSources derives Source records from a tool result payload per the
// per-tool extraction rules in C3. Tools not listed yield no sources.
func ExtractSources(toolName string, result map[string]any) []Source {
	switch toolName {
	case "web_search":
		items, _ := result["results"].([]any)
		sources := make([]Source, 0, len(items))
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			url, _ := m["url"].(string)
			title, _ := m["title"].(string)
			sources = append(sources, Source{URL: url, Title: title, Tool: "web_search"})
		}
		return sources
	case "fetch_page":
		url, _ := result["url"].(string)
		title, _ := result["title"].(string)
		return []Source{{URL: url, Title: title, Tool: "fetch_page"}}
	case "get_note":
		note, _ := result["note"].(map[string]any)
		if note == nil {
			return nil
		}
		urls, _ := note["source_urls"].([]any)
		sources := make([]Source, 0, len(urls))
		for _, u := range urls {
			url, ok := u.(string)
			if !ok {
				continue
			}
			sources = append(sources, Source{URL: url, Title: "From saved note", Tool: "get_note"})
		}
		return sources
	default:
		return nil
	}
}

// DedupeSources performs a linear scan over sources, keeping the first
// occurrence of each non-empty URL and preserving first-seen order.
func DedupeSources(sources []Source) []Source {
	seen := make(map[string]bool, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}
