package graph

import (
	"testing"
	"time"
)

func TestRowString(t *testing.T) {
	row := map[string]any{"content": "hello"}

	got, err := rowString(row, "content")
	if err != nil || got != "hello" {
		t.Errorf("rowString = %q, %v", got, err)
	}

	if _, err := rowString(row, "missing"); err == nil {
		t.Error("rowString(missing) succeeded, want error")
	}
	if _, err := rowString(map[string]any{"content": 42}, "content"); err == nil {
		t.Error("rowString(int) succeeded, want error")
	}
	if _, err := rowString(map[string]any{"content": nil}, "content"); err == nil {
		t.Error("rowString(nil) succeeded, want error")
	}
}

func TestRowTimeNormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*3600)
	local := time.Date(2025, 6, 15, 14, 0, 0, 0, zone)

	got, err := rowTime(map[string]any{"timestamp": local}, "timestamp")
	if err != nil {
		t.Fatalf("rowTime: %v", err)
	}
	if got.Location() != time.UTC {
		t.Errorf("rowTime location = %v, want UTC", got.Location())
	}
	if !got.Equal(local) {
		t.Errorf("rowTime changed the instant: %v vs %v", got, local)
	}
}

func TestRowTimePtrMissing(t *testing.T) {
	// Conversations without messages have a null last_message_time.
	if got := rowTimePtr(map[string]any{"last_message_time": nil}, "last_message_time"); got != nil {
		t.Errorf("rowTimePtr(nil) = %v, want nil", got)
	}
}

func TestRowFloat(t *testing.T) {
	if got, err := rowFloat(map[string]any{"score": 0.75}, "score"); err != nil || got != 0.75 {
		t.Errorf("rowFloat(float64) = %v, %v", got, err)
	}
	// Neo4j integers arrive as int64; scores must still decode.
	if got, err := rowFloat(map[string]any{"score": int64(1)}, "score"); err != nil || got != 1.0 {
		t.Errorf("rowFloat(int64) = %v, %v", got, err)
	}
	if _, err := rowFloat(map[string]any{"score": "high"}, "score"); err == nil {
		t.Error("rowFloat(string) succeeded, want error")
	}
}

func TestRowInt(t *testing.T) {
	if got, err := rowInt(map[string]any{"count": int64(3)}, "count"); err != nil || got != 3 {
		t.Errorf("rowInt = %v, %v", got, err)
	}
	if _, err := rowInt(map[string]any{"count": 3.0}, "count"); err == nil {
		t.Error("rowInt(float64) succeeded, want error")
	}
}

func TestDecodeChatMessages(t *testing.T) {
	rows := []map[string]any{
		{"role": "user", "content": "hi"},
		{"role": "assistant", "content": "hello"},
	}

	msgs, err := decodeChatMessages(rows)
	if err != nil {
		t.Fatalf("decodeChatMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[1].Role != "assistant" {
		t.Errorf("decodeChatMessages = %+v", msgs)
	}

	if _, err := decodeChatMessages([]map[string]any{{"role": "user"}}); err == nil {
		t.Error("decodeChatMessages(missing content) succeeded, want error")
	}
}
