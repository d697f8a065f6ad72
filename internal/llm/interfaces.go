package llm

import (
	"context"

	"github.com/draylen/graphchat/pkg/types"
)

// ChatCompleter is the interface for multi-turn chat completion. The system
// prompt is carried separately from the history so callers can splice the
// knowledge context in without touching the stored messages.
type ChatCompleter interface {
	Complete(ctx context.Context, history []types.ChatMessage, systemPrompt string) (string, error)
	GetModel() string
}

// EmbeddingGenerator is the interface for generating vector embeddings.
// Returns float32 slice; the vector index consumes it as-is.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
