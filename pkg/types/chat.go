// Package types defines the shared domain types for the graphchat system.
// These are the records exchanged between the HTTP layer, the chat
// orchestrator, and the graph-backed stores.
package types

import "time"

// Message roles. Only these two values are ever persisted.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// UntitledConversation is the sentinel title given to a conversation at
// creation time. Title generation only runs while the title still holds
// this value.
const UntitledConversation = "New Chat"

// ChatMessage is a single turn in a conversation as seen by the LLM and by
// API clients.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the per-user conversation summary returned by the
// conversation listing endpoint.
type Conversation struct {
	ID            string     `json:"conversation_id"`
	Title         string     `json:"title"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_time,omitempty"`
}

// TopicMemory is a prior message recalled because it mentions the same
// topic as the current message. Transient: it lives only for the duration
// of a single turn.
type TopicMemory struct {
	Content   string
	Timestamp time.Time
}

// SemanticMemory is a prior message recalled through embedding similarity.
// Score is the raw similarity reported by the vector index, before any
// recency decay is applied.
type SemanticMemory struct {
	Content   string
	Timestamp time.Time
	Score     float64
}
