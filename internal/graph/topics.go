package graph

import (
	"context"

	"github.com/draylen/graphchat/pkg/types"
)

// TopicRepo manages Topic nodes and their MENTIONS / HAS_TOPIC edges.
// Topic identity is (normalized label, owning user): the same label used by
// two users yields two distinct Topic nodes.
type TopicRepo struct {
	store *Store
}

// NewTopicRepo creates a TopicRepo backed by store.
func NewTopicRepo(store *Store) *TopicRepo {
	return &TopicRepo{store: store}
}

// Link upserts a Topic node per label and connects
// (User)-[:HAS_TOPIC]->(Topic) and (Message)-[:MENTIONS]->(Topic).
// MERGE makes the whole operation idempotent per (user, topic, message).
// Labels must already be normalized; lookups depend on exact match.
func (r *TopicRepo) Link(ctx context.Context, userID int64, messageID string, topics []string) error {
	const cypher = `
		MATCH (u:User {id: $user_id})
		MATCH (m:Message)
		WHERE elementId(m) = $message_id
		MERGE (t:Topic {name: $topic, user_id: $user_id})
			ON CREATE SET t.created_at = datetime()
		MERGE (u)-[:HAS_TOPIC]->(t)
		MERGE (m)-[:MENTIONS]->(t)`

	for _, topic := range topics {
		_, err := r.store.Run(ctx, cypher, map[string]any{
			"user_id":    userID,
			"message_id": messageID,
			"topic":      topic,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Memory returns prior messages by the same user that mention the topic,
// newest first, excluding the message currently being processed. An unknown
// topic yields an empty slice, not an error.
func (r *TopicRepo) Memory(ctx context.Context, userID int64, topic, excludeMessageID string, limit int) ([]types.TopicMemory, error) {
	const cypher = `
		MATCH (u:User {id: $user_id})-[:HAS_TOPIC]->(t:Topic {name: $topic})
		MATCH (m:Message)-[:MENTIONS]->(t)
		WHERE elementId(m) <> $exclude_message_id
		RETURN
			m.content AS content,
			m.timestamp AS timestamp
		ORDER BY m.timestamp DESC
		LIMIT $limit`

	rows, err := r.store.Run(ctx, cypher, map[string]any{
		"user_id":            userID,
		"topic":              topic,
		"exclude_message_id": excludeMessageID,
		"limit":              limit,
	})
	if err != nil {
		return nil, err
	}

	memories := make([]types.TopicMemory, 0, len(rows))
	for _, row := range rows {
		content, err := rowString(row, "content")
		if err != nil {
			return nil, err
		}
		ts, err := rowTime(row, "timestamp")
		if err != nil {
			return nil, err
		}
		memories = append(memories, types.TopicMemory{Content: content, Timestamp: ts})
	}
	return memories, nil
}
