package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/draylen/graphchat/pkg/types"
)

// ConversationRepo provides conversation CRUD over the graph store.
type ConversationRepo struct {
	store *Store
}

// NewConversationRepo creates a ConversationRepo backed by store.
func NewConversationRepo(store *Store) *ConversationRepo {
	return &ConversationRepo{store: store}
}

// Create creates a conversation for the user (creating the User node on
// first contact) and returns its externally generated id.
func (r *ConversationRepo) Create(ctx context.Context, userID int64) (string, error) {
	conversationID := uuid.NewString()

	const cypher = `
		MERGE (u:User {id: $user_id})
		CREATE (c:Conversation {
			id: $conversation_id,
			created_at: datetime(),
			title: $title
		})
		CREATE (u)-[:HAS_CONVERSATION]->(c)
		RETURN c.id AS conversation_id`

	rows, err := r.store.Run(ctx, cypher, map[string]any{
		"user_id":         userID,
		"conversation_id": conversationID,
		"title":           types.UntitledConversation,
	})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("graph: conversation create returned no rows")
	}
	return rowString(rows[0], "conversation_id")
}

// VerifyOwner reports whether the conversation exists and belongs to the
// user. Unknown conversations are not an error, just false.
func (r *ConversationRepo) VerifyOwner(ctx context.Context, userID int64, conversationID string) (bool, error) {
	const cypher = `
		MATCH (u:User {id: $user_id})-[:HAS_CONVERSATION]->(c:Conversation {id: $conversation_id})
		RETURN c.id AS id`

	rows, err := r.store.Run(ctx, cypher, map[string]any{
		"user_id":         userID,
		"conversation_id": conversationID,
	})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Title returns the conversation's current title. ErrNotFound when the
// conversation does not exist.
func (r *ConversationRepo) Title(ctx context.Context, conversationID string) (string, error) {
	const cypher = `
		MATCH (c:Conversation {id: $conversation_id})
		RETURN c.title AS title`

	rows, err := r.store.Run(ctx, cypher, map[string]any{"conversation_id": conversationID})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rowStringOr(rows[0], "title", types.UntitledConversation), nil
}

// SetTitle updates the conversation title.
func (r *ConversationRepo) SetTitle(ctx context.Context, conversationID, title string) error {
	const cypher = `
		MATCH (c:Conversation {id: $conversation_id})
		SET c.title = $title`

	_, err := r.store.Run(ctx, cypher, map[string]any{
		"conversation_id": conversationID,
		"title":           title,
	})
	return err
}

// ListForUser returns the user's conversations, most recently active first.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64) ([]types.Conversation, error) {
	const cypher = `
		MATCH (u:User {id: $user_id})-[:HAS_CONVERSATION]->(c:Conversation)
		OPTIONAL MATCH (c)-[:HAS_MESSAGE]->(m:Message)
		WITH c, max(m.timestamp) AS last_message_time
		RETURN
			c.id AS conversation_id,
			c.title AS title,
			c.created_at AS created_at,
			last_message_time
		ORDER BY last_message_time DESC`

	rows, err := r.store.Run(ctx, cypher, map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}

	conversations := make([]types.Conversation, 0, len(rows))
	for _, row := range rows {
		id, err := rowString(row, "conversation_id")
		if err != nil {
			return nil, err
		}
		createdAt, err := rowTime(row, "created_at")
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, types.Conversation{
			ID:            id,
			Title:         rowStringOr(row, "title", types.UntitledConversation),
			CreatedAt:     createdAt,
			LastMessageAt: rowTimePtr(row, "last_message_time"),
		})
	}
	return conversations, nil
}
