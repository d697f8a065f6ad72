package memory

import "strings"

const (
	// maxTopicsPerMessage caps how many topics a single message may yield.
	maxTopicsPerMessage = 4

	minTopicLen = 3
	maxTopicLen = 40
)

// noiseWords are substrings that betray an instruction echo rather than a
// real noun phrase ("explain X in simple terms", "here are the topics...").
// Matching is case-insensitive and substring-based.
var noiseWords = []string{
	"explain", "simple", "terms", "here",
	"topics", "clear", "include", "following", "are",
}

// CleanTopics normalises the raw topic candidates returned by the LLM into
// at most maxTopicsPerMessage labels: each candidate is trimmed and
// title-cased, then rejected when its length falls outside
// [minTopicLen, maxTopicLen] or it contains a noise word. Duplicates are
// dropped keeping the first occurrence, so the output order is the input
// order — deterministic, unlike set semantics.
//
// The function is a pure filter pipeline over its input; it never mutates
// the slice it is given.
func CleanTopics(raw []string) []string {
	clean := make([]string, 0, maxTopicsPerMessage)
	seen := make(map[string]bool, len(raw))

	for _, candidate := range raw {
		topic := strings.Title(strings.ToLower(strings.TrimSpace(candidate))) //nolint:staticcheck // ASCII noun phrases only
		if len(topic) < minTopicLen || len(topic) > maxTopicLen {
			continue
		}
		if containsNoise(topic) {
			continue
		}
		if seen[topic] {
			continue
		}
		seen[topic] = true
		clean = append(clean, topic)
		if len(clean) == maxTopicsPerMessage {
			break
		}
	}

	return clean
}

func containsNoise(topic string) bool {
	lower := strings.ToLower(topic)
	for _, w := range noiseWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
