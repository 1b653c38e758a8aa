// Package openai provides a text generation adapter for OpenAI and
// OpenAI-compatible inference servers.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.TextGenerator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// ErrNoChoices is returned when a completion carries no choices.
var ErrNoChoices = errors.New("openai: no completion choices returned")

// LLMConfig holds configuration for the OpenAI generator.
type LLMConfig struct {
	// APIKey is the OpenAI API key. Local compatible servers accept any value.
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for vLLM, LM Studio or other compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Generator produces completions through the chat completions API.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates a new OpenAI generator.
func NewGenerator(cfg LLMConfig) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Generator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Generate sends prompt as a single user message and returns the reply.
func (g *Generator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:        opts.MaxTokens,
		Temperature:      float32(opts.Temperature),
		FrequencyPenalty: FrequencyPenalty(opts.RepetitionPenalty),
		Stop:             opts.StopWords,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// FrequencyPenalty maps a multiplicative repetition penalty (1.0 = off) onto
// the additive frequency penalty range the API accepts.
func FrequencyPenalty(repetitionPenalty float64) float32 {
	if repetitionPenalty <= 0 {
		return 0
	}
	return float32(max(-2, min(2, repetitionPenalty-1)))
}

// ModelName returns the name of the LLM model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates credentials and connectivity by listing models.
func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
