package graph

import (
	"context"
	"fmt"

	"github.com/draylen/graphchat/pkg/types"
)

// MessageRepo provides message persistence and history retrieval.
type MessageRepo struct {
	store *Store
}

// NewMessageRepo creates a MessageRepo backed by store.
func NewMessageRepo(store *Store) *MessageRepo {
	return &MessageRepo{store: store}
}

// Create appends a message to the conversation and returns its element id.
// Messages are immutable after creation.
func (r *MessageRepo) Create(ctx context.Context, conversationID, role, content string) (string, error) {
	const cypher = `
		MATCH (c:Conversation {id: $conversation_id})
		CREATE (m:Message {
			role: $role,
			content: $content,
			timestamp: datetime()
		})
		CREATE (c)-[:HAS_MESSAGE]->(m)
		RETURN elementId(m) AS message_id`

	rows, err := r.store.Run(ctx, cypher, map[string]any{
		"conversation_id": conversationID,
		"role":            role,
		"content":         content,
	})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("graph: message create matched no conversation %q", conversationID)
	}
	return rowString(rows[0], "message_id")
}

// Recent returns the oldest `limit` messages of the conversation in
// chronological order, shaped for the completion call.
func (r *MessageRepo) Recent(ctx context.Context, conversationID string, limit int) ([]types.ChatMessage, error) {
	const cypher = `
		MATCH (c:Conversation {id: $conversation_id})-[:HAS_MESSAGE]->(m:Message)
		RETURN m.role AS role, m.content AS content
		ORDER BY m.timestamp ASC
		LIMIT $limit`

	rows, err := r.store.Run(ctx, cypher, map[string]any{
		"conversation_id": conversationID,
		"limit":           limit,
	})
	if err != nil {
		return nil, err
	}
	return decodeChatMessages(rows)
}

// Full returns every message of the conversation in chronological order.
func (r *MessageRepo) Full(ctx context.Context, conversationID string) ([]types.ChatMessage, error) {
	const cypher = `
		MATCH (c:Conversation {id: $conversation_id})-[:HAS_MESSAGE]->(m:Message)
		RETURN m.role AS role, m.content AS content
		ORDER BY m.timestamp ASC`

	rows, err := r.store.Run(ctx, cypher, map[string]any{"conversation_id": conversationID})
	if err != nil {
		return nil, err
	}
	return decodeChatMessages(rows)
}

// CountUser returns the number of user-role messages in the conversation.
// Always a fresh query: message counts are never cached across pipeline
// steps.
func (r *MessageRepo) CountUser(ctx context.Context, conversationID string) (int, error) {
	const cypher = `
		MATCH (c:Conversation {id: $conversation_id})-[:HAS_MESSAGE]->(m:Message {role: 'user'})
		RETURN count(m) AS count`

	rows, err := r.store.Run(ctx, cypher, map[string]any{"conversation_id": conversationID})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rowInt(rows[0], "count")
}

// InitialUser returns the contents of the first `limit` user messages, the
// raw material for title generation.
func (r *MessageRepo) InitialUser(ctx context.Context, conversationID string, limit int) ([]string, error) {
	const cypher = `
		MATCH (c:Conversation {id: $conversation_id})-[:HAS_MESSAGE]->(m:Message {role: 'user'})
		RETURN m.content AS content
		ORDER BY m.timestamp ASC
		LIMIT $limit`

	rows, err := r.store.Run(ctx, cypher, map[string]any{
		"conversation_id": conversationID,
		"limit":           limit,
	})
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		content, err := rowString(row, "content")
		if err != nil {
			return nil, err
		}
		texts = append(texts, content)
	}
	return texts, nil
}

func decodeChatMessages(rows []map[string]any) ([]types.ChatMessage, error) {
	messages := make([]types.ChatMessage, 0, len(rows))
	for _, row := range rows {
		role, err := rowString(row, "role")
		if err != nil {
			return nil, err
		}
		content, err := rowString(row, "content")
		if err != nil {
			return nil, err
		}
		messages = append(messages, types.ChatMessage{Role: role, Content: content})
	}
	return messages, nil
}
