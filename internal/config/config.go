// Package config provides configuration management for graphchat.
// It loads settings from environment variables with the GRAPHCHAT_ prefix
// and provides sensible defaults for all configuration options.
//
// A .env file in the working directory is loaded first (without overriding
// variables already set in the environment), and an optional YAML file can
// supply a base layer that environment variables override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the graphchat application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Graph    GraphConfig    `yaml:"graph"`
	Users    UsersConfig    `yaml:"users"`
	LLM      LLMConfig      `yaml:"llm"`
	Auth     AuthConfig     `yaml:"auth"`
	Memory   MemoryConfig   `yaml:"memory"`
	Semantic SemanticConfig `yaml:"semantic"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"` // Server port (default: 8000)
	Host string `yaml:"host"` // Server host (default: 127.0.0.1)
}

// GraphConfig contains Neo4j connection settings.
type GraphConfig struct {
	URI      string `yaml:"uri"`      // Bolt URI (default: bolt://localhost:7687)
	Username string `yaml:"username"` // (default: neo4j)
	Password string `yaml:"password"`
}

// UsersConfig contains the account database settings.
type UsersConfig struct {
	DBPath string `yaml:"db_path"` // SQLite file path (default: ./data/users.db)
}

// LLMConfig contains chat and embedding provider configuration.
type LLMConfig struct {
	OpenRouterAPIKey string  `yaml:"openrouter_api_key"`
	OpenRouterModel  string  `yaml:"openrouter_model"` // (default: meta-llama/llama-3-8b-instruct)
	OpenRouterURL    string  `yaml:"openrouter_url"`   // (default: https://openrouter.ai/api)
	MaxTokens        int     `yaml:"max_tokens"`       // (default: 600)
	Temperature      float64 `yaml:"temperature"`      // (default: 0.7)
	OpenAIAPIKey     string  `yaml:"openai_api_key"`   // embeddings provider key
	EmbeddingModel   string  `yaml:"embedding_model"`  // (default: text-embedding-3-small)
	EmbeddingURL     string  `yaml:"embedding_url"`    // (default: https://api.openai.com)
}

// AuthConfig contains token-issuing settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"` // (default: 60m)
}

// MemoryConfig contains the memory pipeline tunables.
type MemoryConfig struct {
	MaxTopics          int     `yaml:"max_topics"`           // topics used per turn (default: 3)
	MaxPerTopic        int     `yaml:"max_per_topic"`        // messages kept per topic (default: 2)
	MaxTotal           int     `yaml:"max_total"`            // topic messages overall (default: 5)
	MaxSemantic        int     `yaml:"max_semantic"`         // semantic matches kept (default: 3)
	HistoryLimit       int     `yaml:"history_limit"`        // history window (default: 10)
	RawSimilarityFloor float64 `yaml:"raw_similarity_floor"` // pre-decay floor (default: 0.6)
}

// SemanticConfig selects the vector search backend.
type SemanticConfig struct {
	Backend     string `yaml:"backend"`      // neo4j or postgres (default: neo4j)
	PostgresDSN string `yaml:"postgres_dsn"` // required when backend is postgres
	Dimensions  int    `yaml:"dimensions"`   // embedding width (default: 1536)
}

// LoadConfig loads configuration from an optional YAML file and environment
// variables with the GRAPHCHAT_ prefix. Environment variables win over the
// file; the file wins over built-in defaults. path may be empty.
func LoadConfig(path string) (*Config, error) {
	// Not an error if absent; env vars already set are not overridden.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8000,
			Host: "127.0.0.1",
		},
		Graph: GraphConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
		},
		Users: UsersConfig{
			DBPath: "./data/users.db",
		},
		LLM: LLMConfig{
			OpenRouterModel: "meta-llama/llama-3-8b-instruct",
			OpenRouterURL:   "https://openrouter.ai/api",
			MaxTokens:       600,
			Temperature:     0.7,
			EmbeddingModel:  "text-embedding-3-small",
			EmbeddingURL:    "https://api.openai.com",
		},
		Auth: AuthConfig{
			TokenTTL: 60 * time.Minute,
		},
		Memory: MemoryConfig{
			MaxTopics:          3,
			MaxPerTopic:        2,
			MaxTotal:           5,
			MaxSemantic:        3,
			HistoryLimit:       10,
			RawSimilarityFloor: 0.6,
		},
		Semantic: SemanticConfig{
			Backend:    "neo4j",
			Dimensions: 1536,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("GRAPHCHAT_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("GRAPHCHAT_HOST", cfg.Server.Host)

	cfg.Graph.URI = getEnv("GRAPHCHAT_NEO4J_URI", cfg.Graph.URI)
	cfg.Graph.Username = getEnv("GRAPHCHAT_NEO4J_USERNAME", cfg.Graph.Username)
	cfg.Graph.Password = getEnv("GRAPHCHAT_NEO4J_PASSWORD", cfg.Graph.Password)

	cfg.Users.DBPath = getEnv("GRAPHCHAT_USERS_DB_PATH", cfg.Users.DBPath)

	cfg.LLM.OpenRouterAPIKey = getEnv("GRAPHCHAT_OPENROUTER_API_KEY", cfg.LLM.OpenRouterAPIKey)
	cfg.LLM.OpenRouterModel = getEnv("GRAPHCHAT_OPENROUTER_MODEL", cfg.LLM.OpenRouterModel)
	cfg.LLM.OpenRouterURL = getEnv("GRAPHCHAT_OPENROUTER_URL", cfg.LLM.OpenRouterURL)
	cfg.LLM.MaxTokens = getEnvInt("GRAPHCHAT_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.Temperature = getEnvFloat("GRAPHCHAT_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.OpenAIAPIKey = getEnv("GRAPHCHAT_OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.EmbeddingModel = getEnv("GRAPHCHAT_EMBEDDING_MODEL", cfg.LLM.EmbeddingModel)
	cfg.LLM.EmbeddingURL = getEnv("GRAPHCHAT_EMBEDDING_URL", cfg.LLM.EmbeddingURL)

	cfg.Auth.JWTSecret = getEnv("GRAPHCHAT_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = getEnvDuration("GRAPHCHAT_TOKEN_TTL", cfg.Auth.TokenTTL)

	cfg.Memory.MaxTopics = getEnvInt("GRAPHCHAT_MAX_TOPICS", cfg.Memory.MaxTopics)
	cfg.Memory.MaxPerTopic = getEnvInt("GRAPHCHAT_MAX_PER_TOPIC", cfg.Memory.MaxPerTopic)
	cfg.Memory.MaxTotal = getEnvInt("GRAPHCHAT_MAX_TOTAL", cfg.Memory.MaxTotal)
	cfg.Memory.MaxSemantic = getEnvInt("GRAPHCHAT_MAX_SEMANTIC", cfg.Memory.MaxSemantic)
	cfg.Memory.HistoryLimit = getEnvInt("GRAPHCHAT_HISTORY_LIMIT", cfg.Memory.HistoryLimit)
	cfg.Memory.RawSimilarityFloor = getEnvFloat("GRAPHCHAT_RAW_SIMILARITY_FLOOR", cfg.Memory.RawSimilarityFloor)

	cfg.Semantic.Backend = getEnv("GRAPHCHAT_SEMANTIC_BACKEND", cfg.Semantic.Backend)
	cfg.Semantic.PostgresDSN = getEnv("GRAPHCHAT_POSTGRES_DSN", cfg.Semantic.PostgresDSN)
	cfg.Semantic.Dimensions = getEnvInt("GRAPHCHAT_EMBEDDING_DIMENSIONS", cfg.Semantic.Dimensions)
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: GRAPHCHAT_JWT_SECRET is required")
	}
	switch c.Semantic.Backend {
	case "neo4j":
	case "postgres":
		if c.Semantic.PostgresDSN == "" {
			return fmt.Errorf("config: GRAPHCHAT_POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown semantic backend %q", c.Semantic.Backend)
	}
	return nil
}

// Addr returns the host:port the HTTP server should bind.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (e.g. "30m") or
// returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
