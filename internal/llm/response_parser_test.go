package llm

import (
	"reflect"
	"testing"
)

func TestParseTopicListCommas(t *testing.T) {
	got := ParseTopicList("gravity, black holes , photons")
	want := []string{"gravity", "black holes", "photons"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTopicList = %v, want %v", got, want)
	}
}

func TestParseTopicListNewlinesAndBullets(t *testing.T) {
	got := ParseTopicList("- gravity\n* black holes\n• photons")
	want := []string{"gravity", "black holes", "photons"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTopicList = %v, want %v", got, want)
	}
}

func TestParseTopicListEmpty(t *testing.T) {
	if got := ParseTopicList("   \n "); got != nil {
		t.Errorf("ParseTopicList(blank) = %v, want nil", got)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Photosynthesis Basics", "Photosynthesis Basics"},
		{"strips quotes", `"Photosynthesis Basics"`, "Photosynthesis Basics"},
		{"first line only", "Photosynthesis Basics\nMore detail here", "Photosynthesis Basics"},
		{"caps at six words", "one two three four five six seven", "one two three four five six"},
		{"too short falls back", "a", "New Chat"},
		{"empty falls back", "  ", "New Chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.in, "New Chat"); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
