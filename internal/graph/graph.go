// Package graph provides the Neo4j-backed store for conversations, messages,
// topics, and the message embedding index. The Store is constructed
// explicitly at process start and closed at shutdown; repositories decode
// query records into typed rows at this boundary so the rest of the system
// never touches raw record maps.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrNotFound is returned when a requested node does not exist.
var ErrNotFound = errors.New("graph: not found")

// Config holds Neo4j connection settings.
type Config struct {
	URI      string // e.g. neo4j://localhost:7687
	Username string
	Password string

	// EmbeddingDimensions is the dimensionality of message embeddings,
	// used when creating the vector index. Default: 1536.
	EmbeddingDimensions int
}

// Store wraps the Neo4j driver with an explicit lifecycle.
type Store struct {
	driver neo4j.DriverWithContext
}

// Open connects to Neo4j and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("graph: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graph: verify connectivity: %w", err)
	}
	return &Store{driver: driver}, nil
}

// Close releases the underlying driver and its connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Run executes a single Cypher query and collects the result records as
// generic maps. Typed repositories are the only intended callers; they
// decode the maps into typed rows immediately.
func (s *Store) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer func() { _ = session.Close(ctx) }()

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("graph: run query: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: collect records: %w", err)
	}

	rows := make([]map[string]any, len(records))
	for i, record := range records {
		rows[i] = record.AsMap()
	}
	return rows, nil
}

// EnsureSchema creates the uniqueness constraints and the message embedding
// vector index. Safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context, cfg Config) error {
	dims := cfg.EmbeddingDimensions
	if dims == 0 {
		dims = 1536
	}

	statements := []string{
		`CREATE CONSTRAINT conversation_id_unique IF NOT EXISTS
		 FOR (c:Conversation) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS
		 FOR (u:User) REQUIRE u.id IS UNIQUE`,
	}
	for _, stmt := range statements {
		if _, err := s.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("graph: ensure constraint: %w", err)
		}
	}

	indexStmt := `CREATE VECTOR INDEX message_embedding_index IF NOT EXISTS
		FOR (m:Message) ON (m.embedding)
		OPTIONS {indexConfig: {
			` + "`vector.dimensions`" + `: $dimensions,
			` + "`vector.similarity_function`" + `: 'cosine'
		}}`
	if _, err := s.Run(ctx, indexStmt, map[string]any{"dimensions": dims}); err != nil {
		return fmt.Errorf("graph: ensure vector index: %w", err)
	}
	return nil
}
