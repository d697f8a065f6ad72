package graph

import (
	"context"

	"github.com/draylen/graphchat/pkg/types"
)

// SemanticRepo stores message embeddings and performs nearest-neighbor
// search over the Neo4j vector index.
type SemanticRepo struct {
	store *Store
}

// NewSemanticRepo creates a SemanticRepo backed by store.
func NewSemanticRepo(store *Store) *SemanticRepo {
	return &SemanticRepo{store: store}
}

// StoreEmbedding attaches an embedding vector to a message node. Only
// user-role messages ever receive embeddings; assistant messages are never
// candidates for semantic recall.
func (r *SemanticRepo) StoreEmbedding(ctx context.Context, messageID string, embedding []float32) error {
	const cypher = `
		MATCH (m:Message)
		WHERE elementId(m) = $message_id
		CALL db.create.setNodeVectorProperty(m, 'embedding', $embedding)`

	_, err := r.store.Run(ctx, cypher, map[string]any{
		"message_id": messageID,
		"embedding":  embedding,
	})
	return err
}

// Search runs nearest-neighbor search over the message embedding index,
// restricted to the user's own user-role messages and excluding the message
// currently being processed. Candidates below the raw similarity floor are
// filtered inside the query so near-random noise never reaches the ranker.
// Results come back in descending raw-score order.
func (r *SemanticRepo) Search(ctx context.Context, userID int64, embedding []float32, excludeMessageID string, k int, floor float64) ([]types.SemanticMemory, error) {
	const cypher = `
		CALL db.index.vector.queryNodes('message_embedding_index', $k, $embedding)
		YIELD node, score
		WHERE
			score >= $floor AND
			node.role = 'user'
			AND elementId(node) <> $exclude_message_id
			AND EXISTS {
				MATCH (u:User {id: $user_id})
					-[:HAS_CONVERSATION]->()
					-[:HAS_MESSAGE]->(node)
			}
		RETURN
			node.content AS content,
			node.timestamp AS timestamp,
			score
		ORDER BY score DESC`

	rows, err := r.store.Run(ctx, cypher, map[string]any{
		"user_id":            userID,
		"embedding":          embedding,
		"exclude_message_id": excludeMessageID,
		"k":                  k,
		"floor":              floor,
	})
	if err != nil {
		return nil, err
	}

	memories := make([]types.SemanticMemory, 0, len(rows))
	for _, row := range rows {
		content, err := rowString(row, "content")
		if err != nil {
			return nil, err
		}
		ts, err := rowTime(row, "timestamp")
		if err != nil {
			return nil, err
		}
		score, err := rowFloat(row, "score")
		if err != nil {
			return nil, err
		}
		memories = append(memories, types.SemanticMemory{Content: content, Timestamp: ts, Score: score})
	}
	return memories, nil
}
