package memory

import (
	"reflect"
	"testing"
)

func TestCleanTopicsNormalizes(t *testing.T) {
	got := CleanTopics([]string{"  quantum physics ", "GRAVITY"})
	want := []string{"Quantum Physics", "Gravity"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanTopics = %v, want %v", got, want)
	}
}

func TestCleanTopicsRejectsByLength(t *testing.T) {
	got := CleanTopics([]string{
		"ai", // too short after trim
		"this label is far far far too long to ever be a usable topic",
		"Dogs",
	})
	want := []string{"Dogs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanTopics = %v, want %v", got, want)
	}
}

func TestCleanTopicsRejectsNoiseWords(t *testing.T) {
	// Each of these contains a noise substring, case-insensitively:
	// "Explain", "Simple Terms", "Here", and "SoftwARE" ("are").
	got := CleanTopics([]string{
		"Explain Gravity",
		"Simple Terms",
		"Here Be Dragons",
		"Software",
		"Gravity",
	})
	want := []string{"Gravity"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanTopics = %v, want %v", got, want)
	}
}

func TestCleanTopicsDedupesFirstSeen(t *testing.T) {
	got := CleanTopics([]string{"gravity", "Gravity", " GRAVITY ", "Photons"})
	want := []string{"Gravity", "Photons"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanTopics = %v, want %v", got, want)
	}
}

func TestCleanTopicsCapsAtFour(t *testing.T) {
	got := CleanTopics([]string{"One Topic", "Two Topic", "Red Topic", "Blue Topic", "Overflow Topic"})
	if len(got) != 4 {
		t.Fatalf("CleanTopics kept %d topics, want 4: %v", len(got), got)
	}
}

func TestCleanTopicsIdempotent(t *testing.T) {
	first := CleanTopics([]string{"quantum physics", "black holes"})
	second := CleanTopics(first)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("CleanTopics not idempotent: %v then %v", first, second)
	}
}

func TestCleanTopicsEmptyInput(t *testing.T) {
	if got := CleanTopics(nil); len(got) != 0 {
		t.Errorf("CleanTopics(nil) = %v, want empty", got)
	}
}
