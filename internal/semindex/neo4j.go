package semindex

import (
	"context"
	"time"

	"github.com/draylen/graphchat/internal/graph"
	"github.com/draylen/graphchat/pkg/types"
)

// Neo4jIndex implements Index on top of the graph store's message
// embedding vector index. Content and timestamp already live on the
// Message node, so Store only attaches the vector.
type Neo4jIndex struct {
	semantic *graph.SemanticRepo
}

// NewNeo4jIndex creates a Neo4jIndex over the given graph store.
func NewNeo4jIndex(store *graph.Store) *Neo4jIndex {
	return &Neo4jIndex{semantic: graph.NewSemanticRepo(store)}
}

// Store attaches the embedding to the message node.
func (i *Neo4jIndex) Store(ctx context.Context, messageID string, _ int64, _ string, _ time.Time, embedding []float32) error {
	return i.semantic.StoreEmbedding(ctx, messageID, embedding)
}

// Search delegates to the graph store's vector index query.
func (i *Neo4jIndex) Search(ctx context.Context, userID int64, embedding []float32, excludeMessageID string, k int, floor float64) ([]types.SemanticMemory, error) {
	return i.semantic.Search(ctx, userID, embedding, excludeMessageID, k, floor)
}

// Compile-time assertion.
var _ Index = (*Neo4jIndex)(nil)
