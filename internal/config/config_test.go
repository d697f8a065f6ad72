package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/draylen/graphchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultHostIsLocalhost(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")
	_ = os.Unsetenv("GRAPHCHAT_HOST")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host,
		"Default host must be 127.0.0.1 for security")
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr())
}

func TestLoadConfig_CanOverrideHost(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")
	t.Setenv("GRAPHCHAT_HOST", "0.0.0.0")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfig_MemoryDefaults(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Memory.MaxTopics)
	assert.Equal(t, 2, cfg.Memory.MaxPerTopic)
	assert.Equal(t, 5, cfg.Memory.MaxTotal)
	assert.Equal(t, 3, cfg.Memory.MaxSemantic)
	assert.Equal(t, 10, cfg.Memory.HistoryLimit)
	assert.InDelta(t, 0.6, cfg.Memory.RawSimilarityFloor, 1e-9)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	_ = os.Unsetenv("GRAPHCHAT_JWT_SECRET")

	_, err := config.LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownSemanticBackend(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")
	t.Setenv("GRAPHCHAT_SEMANTIC_BACKEND", "redis")

	_, err := config.LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_PostgresBackendNeedsDSN(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")
	t.Setenv("GRAPHCHAT_SEMANTIC_BACKEND", "postgres")
	_ = os.Unsetenv("GRAPHCHAT_POSTGRES_DSN")

	_, err := config.LoadConfig("")
	assert.Error(t, err)

	t.Setenv("GRAPHCHAT_POSTGRES_DSN", "postgres://localhost/graphchat")
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Semantic.Backend)
}

func TestLoadConfig_YAMLFileOverridesDefaults(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")
	_ = os.Unsetenv("GRAPHCHAT_PORT")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
memory:
  max_topics: 4
`), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Memory.MaxTopics)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5, cfg.Memory.MaxTotal)
}

func TestLoadConfig_EnvWinsOverYAML(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")
	t.Setenv("GRAPHCHAT_PORT", "7070")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadConfig_TokenTTL(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, cfg.Auth.TokenTTL)

	t.Setenv("GRAPHCHAT_TOKEN_TTL", "90m")
	cfg, err = config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
}

func TestLoadConfig_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("GRAPHCHAT_JWT_SECRET", "test-secret")
	t.Setenv("GRAPHCHAT_PORT", "not-a-port")
	t.Setenv("GRAPHCHAT_TEMPERATURE", "warm")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
}
