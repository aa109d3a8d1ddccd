// Package llm provides the chat completion client for the agent.
// The transport is the Aimo completion API, an OpenAI-shaped endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Message is one turn of a conversation on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client is the interface for completion calls.
// Implemented by AimoClient; tests use an in-process fake.
type Client interface {
	// Complete sends the full message sequence and returns the reply text.
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config holds the completion parameters. Zero values fall back to defaults.
// Retry, backoff and TLS policy belong to the caller's http.Client.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// DefaultConfig returns the production completion parameters.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://ai.aimoverse.xyz/api/v1.0.0",
		Model:       "aimo-chat",
		Temperature: 0.5,
		MaxTokens:   1000,
		TopP:        0.95,
	}
}

// AimoClient calls the Aimo completion API with a bearer JWT.
type AimoClient struct {
	config Config
	jwt    string
	client *http.Client
}

// NewAimoClient creates a client with the given JWT and config.
// Zero-valued config fields are filled from DefaultConfig.
func NewAimoClient(jwt string, config Config) *AimoClient {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.Temperature == 0 {
		config.Temperature = defaults.Temperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaults.MaxTokens
	}
	if config.TopP == 0 {
		config.TopP = defaults.TopP
	}
	return &AimoClient{
		config: config,
		jwt:    jwt,
		client: &http.Client{},
	}
}

type requestSchema struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
	Stream      int       `json:"stream"`
}

type responseSchema struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete posts a completion request and returns the first choice's content.
func (c *AimoClient) Complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(requestSchema{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		TopP:        c.config.TopP,
		Stream:      0,
	})
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.jwt)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: completion call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llm: completion returned %d: %s", resp.StatusCode, body)
	}

	var decoded responseSchema
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llm: completion returned no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
