package llm

import "strings"

// ParseTopicList splits an LLM topic reply into raw candidate labels.
// The prompt asks for a comma-separated list, but models occasionally use
// newlines or prefix bullets, so both separators are honoured and leading
// list markers are stripped. Normalisation and noise filtering happen
// downstream; this only shapes the text into candidates.
func ParseTopicList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	candidates := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimLeft(f, "-*• \t")
		if f == "" {
			continue
		}
		candidates = append(candidates, f)
	}
	return candidates
}

// CleanTitle normalises an LLM title reply: first line only, quotes
// stripped, at most six words. Returns fallback when the remainder is too
// short to be a usable title.
func CleanTitle(raw, fallback string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.ReplaceAll(title, `"`, "")
	title = strings.ReplaceAll(title, "'", "")

	words := strings.Fields(title)
	if len(words) > 6 {
		words = words[:6]
	}
	title = strings.Join(words, " ")

	if len(title) < 3 {
		return fallback
	}
	return title
}
