// Package semindex abstracts the vector index used for semantic memory
// recall. The default backend stores embeddings on Message nodes in Neo4j;
// a Postgres/pgvector backend is available for deployments that keep the
// vector workload off the graph database.
package semindex

import (
	"context"
	"time"

	"github.com/draylen/graphchat/pkg/types"
)

// Index stores user-message embeddings and performs similarity search.
// Failures on either operation are advisory from the chat pipeline's point
// of view: the turn proceeds without semantic memory.
type Index interface {
	// Store indexes the embedding of a user message. Backends that keep
	// content elsewhere (the graph store) may ignore content and ts.
	Store(ctx context.Context, messageID string, userID int64, content string, ts time.Time, embedding []float32) error

	// Search returns the top k user messages by raw similarity, restricted
	// to the given user, excluding excludeMessageID, with candidates below
	// floor filtered inside the search. Descending score order.
	Search(ctx context.Context, userID int64, embedding []float32, excludeMessageID string, k int, floor float64) ([]types.SemanticMemory, error)
}
