package semindex

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/draylen/graphchat/pkg/types"
)

// PostgresIndex implements Index using Postgres with the pgvector
// extension. Because the graph store remains the source of truth for
// message content, this table is a denormalised recall index: one row per
// embedded user message.
type PostgresIndex struct {
	db         *sql.DB
	dimensions int
}

// OpenPostgres connects to Postgres, enables pgvector, and creates the
// embeddings table and its cosine index.
func OpenPostgres(dsn string, dimensions int) (*PostgresIndex, error) {
	if dimensions == 0 {
		dimensions = 1536
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("semindex: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("semindex: ping postgres: %w", err)
	}

	idx := &PostgresIndex{db: db, dimensions: dimensions}
	if err := idx.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (i *PostgresIndex) ensureSchema() error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS message_embeddings (
			message_id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			content TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			embedding vector(%d) NOT NULL
		)`, i.dimensions),
		`CREATE INDEX IF NOT EXISTS idx_message_embeddings_user ON message_embeddings (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_message_embeddings_vec
			ON message_embeddings USING ivfflat (embedding vector_cosine_ops)`,
	}
	for _, stmt := range statements {
		if _, err := i.db.Exec(stmt); err != nil {
			return fmt.Errorf("semindex: ensure schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (i *PostgresIndex) Close() error {
	return i.db.Close()
}

// Store upserts the embedding row for a user message.
func (i *PostgresIndex) Store(ctx context.Context, messageID string, userID int64, content string, ts time.Time, embedding []float32) error {
	const querySQL = `
		INSERT INTO message_embeddings (message_id, user_id, content, ts, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (message_id) DO UPDATE SET embedding = EXCLUDED.embedding`

	_, err := i.db.ExecContext(ctx, querySQL,
		messageID, userID, content, ts.UTC(), pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("semindex: store embedding: %w", err)
	}
	return nil
}

// Search returns the user's nearest messages by cosine similarity
// (1 - cosine distance), excluding the current message and anything below
// floor.
func (i *PostgresIndex) Search(ctx context.Context, userID int64, embedding []float32, excludeMessageID string, k int, floor float64) ([]types.SemanticMemory, error) {
	const querySQL = `
		SELECT content, ts, 1 - (embedding <=> $1) AS score
		FROM message_embeddings
		WHERE user_id = $2
		  AND message_id <> $3
		  AND 1 - (embedding <=> $1) >= $4
		ORDER BY embedding <=> $1
		LIMIT $5`

	rows, err := i.db.QueryContext(ctx, querySQL,
		pgvector.NewVector(embedding), userID, excludeMessageID, floor, k)
	if err != nil {
		return nil, fmt.Errorf("semindex: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []types.SemanticMemory
	for rows.Next() {
		var m types.SemanticMemory
		if err := rows.Scan(&m.Content, &m.Timestamp, &m.Score); err != nil {
			return nil, fmt.Errorf("semindex: scan: %w", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("semindex: rows: %w", err)
	}
	return memories, nil
}

// Compile-time assertion.
var _ Index = (*PostgresIndex)(nil)
