package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/draylen/graphchat/pkg/types"
)

// Budget holds the caps applied when selecting memories for injection.
// The zero value is not useful; use DefaultBudget.
type Budget struct {
	// MaxTopics is the number of topics admitted into the context.
	MaxTopics int

	// MaxPerTopic is the number of memories kept for each admitted topic.
	MaxPerTopic int

	// MaxTotal caps the total memory count across all admitted topics.
	MaxTotal int

	// MaxSemantic is the number of semantic memories kept after decay scoring.
	MaxSemantic int

	// MinFinalScore is the decayed-score floor: semantic candidates whose
	// rawScore * recencyDecay is at or below it are discarded. The raw
	// similarity floor (applied inside the vector search) is a separate
	// tunable and must not be conflated with this one.
	MinFinalScore float64
}

// DefaultBudget returns the reference budgets: 3 topics, 2 memories per
// topic, 5 memories total, 3 semantic memories, and a zero final-score floor.
func DefaultBudget() Budget {
	return Budget{
		MaxTopics:     3,
		MaxPerTopic:   2,
		MaxTotal:      5,
		MaxSemantic:   3,
		MinFinalScore: 0,
	}
}

// TopicMemories pairs a topic label with its recalled messages. Ranking
// operates on an ordered slice rather than a map so that topic order is
// first-seen deterministic.
type TopicMemories struct {
	Topic    string
	Memories []types.TopicMemory
}

// Ranked is the outcome of one ranking pass.
type Ranked struct {
	// Topics holds the budgeted, deduplicated topic memories in first-seen
	// topic order. Topics whose memory list ended up empty are omitted.
	Topics []TopicMemories

	// SemanticTexts holds the surviving semantic memory contents, best
	// score first.
	SemanticTexts []string

	// UseMemory reports whether anything survived filtering. When false the
	// bare prompt template must be used.
	UseMemory bool
}

// Ranker combines topic-linked and similarity-based memories into a single
// bounded selection. It is stateless and safe for concurrent use.
type Ranker struct {
	budget Budget
}

// NewRanker returns a Ranker applying the given budget.
func NewRanker(budget Budget) *Ranker {
	return &Ranker{budget: budget}
}

type scoredText struct {
	score float64
	text  string
}

// Rank filters both memory signals under the configured budgets.
//
// Semantic candidates are scored as rawScore * RecencyDecay(timestamp) and
// anything at or below MinFinalScore is dropped; the rest are kept in
// descending score order (stable, no secondary key) up to MaxSemantic.
//
// Topic memories are admitted in the given order: at most MaxTopics topics
// with a non-empty list, at most MaxPerTopic memories each, stopping — and
// truncating the last topic — once MaxTotal memories have been admitted.
// Finally, contents (trimmed) already seen under an earlier topic are
// stripped so every memory appears at most once.
func (r *Ranker) Rank(topicMemories []TopicMemories, semantic []types.SemanticMemory, now time.Time) Ranked {
	result := Ranked{
		SemanticTexts: r.rankSemantic(semantic, now),
	}

	total := 0
	for _, tm := range topicMemories {
		if len(result.Topics) == r.budget.MaxTopics || total == r.budget.MaxTotal {
			break
		}
		if len(tm.Memories) == 0 {
			// Empty topics do not count against MaxTopics.
			continue
		}

		kept := tm.Memories
		if len(kept) > r.budget.MaxPerTopic {
			kept = kept[:r.budget.MaxPerTopic]
		}
		if remaining := r.budget.MaxTotal - total; len(kept) > remaining {
			kept = kept[:remaining]
		}
		total += len(kept)
		result.Topics = append(result.Topics, TopicMemories{
			Topic:    tm.Topic,
			Memories: kept,
		})
	}

	result.Topics = dedupeAcrossTopics(result.Topics)
	result.UseMemory = len(result.Topics) > 0 || len(result.SemanticTexts) > 0
	return result
}

func (r *Ranker) rankSemantic(candidates []types.SemanticMemory, now time.Time) []string {
	scored := make([]scoredText, 0, len(candidates))
	for _, c := range candidates {
		final := c.Score * RecencyDecay(c.Timestamp, now)
		if final <= r.budget.MinFinalScore {
			continue
		}
		scored = append(scored, scoredText{score: final, text: c.Content})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > r.budget.MaxSemantic {
		scored = scored[:r.budget.MaxSemantic]
	}

	texts := make([]string, len(scored))
	for i, s := range scored {
		texts[i] = s.text
	}
	return texts
}

// dedupeAcrossTopics strips memories whose trimmed content already appeared
// under an earlier topic. Topics left empty by deduplication are removed.
func dedupeAcrossTopics(topics []TopicMemories) []TopicMemories {
	seen := make(map[string]bool)
	out := topics[:0]

	for _, tm := range topics {
		var kept []types.TopicMemory
		for _, m := range tm.Memories {
			key := strings.TrimSpace(m.Content)
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, TopicMemories{Topic: tm.Topic, Memories: kept})
	}

	return out
}
