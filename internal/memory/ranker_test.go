package memory

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/draylen/graphchat/pkg/types"
)

var rankNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func topicWith(topic string, contents ...string) TopicMemories {
	tm := TopicMemories{Topic: topic}
	for _, c := range contents {
		tm.Memories = append(tm.Memories, types.TopicMemory{
			Content:   c,
			Timestamp: rankNow.Add(-time.Hour),
		})
	}
	return tm
}

func TestRankBudgets(t *testing.T) {
	// Four topics with three memories each: at most three topics survive,
	// at most two memories per topic, at most five memories overall.
	var input []TopicMemories
	for i := 0; i < 4; i++ {
		input = append(input, topicWith(
			fmt.Sprintf("Topic %d", i),
			fmt.Sprintf("t%d first", i),
			fmt.Sprintf("t%d second", i),
			fmt.Sprintf("t%d third", i),
		))
	}

	ranked := NewRanker(DefaultBudget()).Rank(input, nil, rankNow)

	if len(ranked.Topics) > 3 {
		t.Fatalf("kept %d topics, want <= 3", len(ranked.Topics))
	}
	total := 0
	for _, tm := range ranked.Topics {
		if len(tm.Memories) > 2 {
			t.Errorf("topic %q kept %d memories, want <= 2", tm.Topic, len(tm.Memories))
		}
		total += len(tm.Memories)
	}
	if total > 5 {
		t.Errorf("kept %d memories overall, want <= 5", total)
	}
	// Third admitted topic gets truncated to one memory by the total cap.
	if got := len(ranked.Topics[2].Memories); got != 1 {
		t.Errorf("last topic kept %d memories, want 1", got)
	}
	if !ranked.UseMemory {
		t.Error("UseMemory = false, want true")
	}
}

func TestRankSkipsEmptyTopics(t *testing.T) {
	input := []TopicMemories{
		{Topic: "Empty One"},
		topicWith("Full One", "m1"),
		{Topic: "Empty Two"},
		topicWith("Full Two", "m2"),
		topicWith("Full Three", "m3"),
		topicWith("Full Four", "m4"),
	}

	ranked := NewRanker(DefaultBudget()).Rank(input, nil, rankNow)

	// Empty topics are skipped entirely and do not count against MaxTopics.
	if len(ranked.Topics) != 3 {
		t.Fatalf("kept %d topics, want 3", len(ranked.Topics))
	}
	if ranked.Topics[0].Topic != "Full One" || ranked.Topics[2].Topic != "Full Three" {
		t.Errorf("unexpected topics kept: %+v", ranked.Topics)
	}
}

func TestRankDeduplicatesAcrossTopics(t *testing.T) {
	input := []TopicMemories{
		topicWith("Gravity", "shared fact  "),
		topicWith("Physics", "  shared fact", "unique fact"),
	}

	ranked := NewRanker(DefaultBudget()).Rank(input, nil, rankNow)

	count := 0
	for _, tm := range ranked.Topics {
		for _, m := range tm.Memories {
			if m.Content == "shared fact  " || m.Content == "  shared fact" {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("trimmed-equal content appears %d times, want 1", count)
	}
}

func TestRankDropsTopicEmptiedByDedup(t *testing.T) {
	input := []TopicMemories{
		topicWith("Gravity", "only fact"),
		topicWith("Physics", "only fact"),
	}

	ranked := NewRanker(DefaultBudget()).Rank(input, nil, rankNow)

	if len(ranked.Topics) != 1 {
		t.Fatalf("kept %d topics, want 1: %+v", len(ranked.Topics), ranked.Topics)
	}
	if ranked.Topics[0].Topic != "Gravity" {
		t.Errorf("kept topic %q, want Gravity", ranked.Topics[0].Topic)
	}
}

func TestRankSemanticDecayScoring(t *testing.T) {
	semantic := []types.SemanticMemory{
		// rawScore 0.8 at age 10 days decays to 0.8*0.4 = 0.32.
		{Content: "decayed", Timestamp: rankNow.AddDate(0, 0, -10), Score: 0.8},
		// age 40 days decays to zero and must be excluded outright.
		{Content: "stale", Timestamp: rankNow.AddDate(0, 0, -40), Score: 0.99},
		// fresh, keeps its raw score.
		{Content: "fresh", Timestamp: rankNow.Add(-time.Hour), Score: 0.7},
	}

	r := NewRanker(DefaultBudget())
	texts := r.rankSemantic(semantic, rankNow)

	want := []string{"fresh", "decayed"}
	if len(texts) != len(want) {
		t.Fatalf("rankSemantic = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("rankSemantic[%d] = %q, want %q", i, texts[i], want[i])
		}
	}

	// Sanity-check the decayed score itself.
	got := 0.8 * RecencyDecay(rankNow.AddDate(0, 0, -10), rankNow)
	if math.Abs(got-0.32) > 1e-9 {
		t.Errorf("decayed final score = %v, want 0.32", got)
	}
}

func TestRankSemanticCapsAtThree(t *testing.T) {
	var semantic []types.SemanticMemory
	for i := 0; i < 5; i++ {
		semantic = append(semantic, types.SemanticMemory{
			Content:   fmt.Sprintf("candidate %d", i),
			Timestamp: rankNow.Add(-time.Hour),
			Score:     0.9 - float64(i)*0.05,
		})
	}

	ranked := NewRanker(DefaultBudget()).Rank(nil, semantic, rankNow)

	if len(ranked.SemanticTexts) != 3 {
		t.Fatalf("kept %d semantic texts, want 3", len(ranked.SemanticTexts))
	}
	if ranked.SemanticTexts[0] != "candidate 0" {
		t.Errorf("best semantic text = %q, want candidate 0", ranked.SemanticTexts[0])
	}
}

func TestRankStableOrderOnScoreTies(t *testing.T) {
	semantic := []types.SemanticMemory{
		{Content: "first", Timestamp: rankNow.Add(-time.Hour), Score: 0.8},
		{Content: "second", Timestamp: rankNow.Add(-time.Hour), Score: 0.8},
	}

	ranked := NewRanker(DefaultBudget()).Rank(nil, semantic, rankNow)

	if ranked.SemanticTexts[0] != "first" || ranked.SemanticTexts[1] != "second" {
		t.Errorf("tie order not stable: %v", ranked.SemanticTexts)
	}
}

func TestRankUseMemoryFlag(t *testing.T) {
	r := NewRanker(DefaultBudget())

	empty := r.Rank(nil, nil, rankNow)
	if empty.UseMemory {
		t.Error("UseMemory = true for empty inputs, want false")
	}

	// Topics present but all empty still means no memory.
	onlyEmpty := r.Rank([]TopicMemories{{Topic: "Nothing"}}, nil, rankNow)
	if onlyEmpty.UseMemory {
		t.Error("UseMemory = true for empty topic lists, want false")
	}

	// All semantic candidates decayed away also means no memory.
	stale := r.Rank(nil, []types.SemanticMemory{
		{Content: "old", Timestamp: rankNow.AddDate(0, 0, -60), Score: 0.95},
	}, rankNow)
	if stale.UseMemory {
		t.Error("UseMemory = true for fully-decayed semantic input, want false")
	}

	topicOnly := r.Rank([]TopicMemories{topicWith("Gravity", "fact")}, nil, rankNow)
	if !topicOnly.UseMemory {
		t.Error("UseMemory = false with topic memories, want true")
	}

	semanticOnly := r.Rank(nil, []types.SemanticMemory{
		{Content: "fresh", Timestamp: rankNow.Add(-time.Hour), Score: 0.9},
	}, rankNow)
	if !semanticOnly.UseMemory {
		t.Error("UseMemory = false with semantic memories, want true")
	}
}
