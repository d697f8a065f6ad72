package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draylen/graphchat/internal/chat"
	"github.com/draylen/graphchat/internal/config"
	"github.com/draylen/graphchat/internal/graph"
	"github.com/draylen/graphchat/internal/llm"
	"github.com/draylen/graphchat/internal/memory"
	"github.com/draylen/graphchat/internal/semindex"
	"github.com/draylen/graphchat/internal/server"
	"github.com/draylen/graphchat/internal/users"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// User accounts live in SQLite; everything conversational lives in the
	// graph.
	userStore, err := users.Open(cfg.Users.DBPath)
	if err != nil {
		log.Fatalf("Failed to open user database: %v", err)
	}
	defer func() { _ = userStore.Close() }()

	graphCfg := graph.Config{
		URI:                 cfg.Graph.URI,
		Username:            cfg.Graph.Username,
		Password:            cfg.Graph.Password,
		EmbeddingDimensions: cfg.Semantic.Dimensions,
	}
	graphStore, err := graph.Open(ctx, graphCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Neo4j: %v", err)
	}
	defer func() { _ = graphStore.Close(context.Background()) }()

	if err := graphStore.EnsureSchema(ctx, graphCfg); err != nil {
		log.Fatalf("Failed to apply graph schema: %v", err)
	}

	index, err := buildSemanticIndex(cfg, graphStore)
	if err != nil {
		log.Fatalf("Failed to initialize semantic index: %v", err)
	}

	completer := llm.NewOpenRouterClient(llm.OpenRouterConfig{
		APIKey:      cfg.LLM.OpenRouterAPIKey,
		Model:       cfg.LLM.OpenRouterModel,
		BaseURL:     cfg.LLM.OpenRouterURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	embedder := llm.NewEmbeddingClient(llm.EmbeddingConfig{
		APIKey:  cfg.LLM.OpenAIAPIKey,
		Model:   cfg.LLM.EmbeddingModel,
		BaseURL: cfg.LLM.EmbeddingURL,
	})
	extractor := llm.NewTopicExtractor(completer)

	service := chat.NewService(
		graph.NewConversationRepo(graphStore),
		graph.NewMessageRepo(graphStore),
		graph.NewTopicRepo(graphStore),
		index,
		completer,
		embedder,
		extractor,
		nil, // event hub wired below
		chat.Options{
			HistoryLimit:       cfg.Memory.HistoryLimit,
			RawSimilarityFloor: cfg.Memory.RawSimilarityFloor,
			Budget: memory.Budget{
				MaxTopics:   cfg.Memory.MaxTopics,
				MaxPerTopic: cfg.Memory.MaxPerTopic,
				MaxTotal:    cfg.Memory.MaxTotal,
				MaxSemantic: cfg.Memory.MaxSemantic,
			},
		},
	)

	addr, hub, err := server.Start(ctx, cfg, userStore, service)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	service.SetEventSink(hub)
	log.Printf("graphchat API running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// buildSemanticIndex selects the vector search backend. Neo4j's own vector
// index is the default; pgvector is available for deployments that keep
// embeddings out of the graph.
func buildSemanticIndex(cfg *config.Config, graphStore *graph.Store) (semindex.Index, error) {
	if cfg.Semantic.Backend == "postgres" {
		return semindex.OpenPostgres(cfg.Semantic.PostgresDSN, cfg.Semantic.Dimensions)
	}
	return semindex.NewNeo4jIndex(graphStore), nil
}
