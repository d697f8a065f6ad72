// Package llm provides the OpenRouter chat client, the embeddings client,
// and the prompt templates used by the chat pipeline. All outbound calls go
// through a circuit breaker and carry explicit timeouts.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draylen/graphchat/pkg/types"
)

// OpenRouterConfig holds configuration for the OpenRouter chat client.
type OpenRouterConfig struct {
	APIKey      string
	Model       string        // default: meta-llama/llama-3-8b-instruct
	BaseURL     string        // default: https://openrouter.ai/api
	Timeout     time.Duration // default: 30s
	MaxTokens   int           // default: 600
	Temperature float64       // default: 0.7
}

// OpenRouterClient implements ChatCompleter against the OpenRouter
// chat-completions API (OpenAI wire format).
type OpenRouterClient struct {
	cfg            OpenRouterConfig
	client         *http.Client
	circuitBreaker *CircuitBreaker
}

// NewOpenRouterClient creates a new OpenRouter client with the given
// configuration, filling in defaults for unset fields.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.Model == "" {
		cfg.Model = "meta-llama/llama-3-8b-instruct"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 600
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	return &OpenRouterClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: NewCircuitBreaker(),
	}
}

// chatRequest is the request body for POST /v1/chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from POST /v1/chat/completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the conversation history plus system prompt to OpenRouter
// and returns the assistant reply text.
func (c *OpenRouterClient) Complete(ctx context.Context, history []types.ChatMessage, systemPrompt string) (string, error) {
	result, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return c.complete(ctx, history, systemPrompt)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return "", fmt.Errorf("openrouter circuit breaker open: %w", err)
		}
		return "", err
	}
	return result.(string), nil
}

func (c *OpenRouterClient) complete(ctx context.Context, history []types.ChatMessage, systemPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, string(body))
	}

	var respData chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(respData.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	// Some llama-family models leak their BOS/EOS markers into the text.
	text := respData.Choices[0].Message.Content
	text = strings.ReplaceAll(text, "<s>", "")
	text = strings.ReplaceAll(text, "</s>", "")
	return strings.TrimSpace(text), nil
}

// GetModel returns the configured model name.
func (c *OpenRouterClient) GetModel() string {
	return c.cfg.Model
}

// Compile-time assertion.
var _ ChatCompleter = (*OpenRouterClient)(nil)
