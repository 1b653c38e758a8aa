// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/ragserve/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragserve/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/ragserve/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragserve/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the AI capabilities the pipeline depends on.
type Services struct {
	Embedder  driven.TextEmbedder
	Generator driven.TextGenerator
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedder != nil {
		s.Embedder.Close()
	}
	if s.Generator != nil {
		s.Generator.Close()
	}
}

// CreateServices creates both capabilities without contacting them.
// Readiness is established later by pinging.
func CreateServices(settings *domain.AppSettings, timeout time.Duration) (*Services, error) {
	embedder, err := CreateEmbedder(&settings.Embedding)
	if err != nil {
		return nil, err
	}

	generator, err := CreateGenerator(&settings.LLM, timeout)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	return &Services{Embedder: embedder, Generator: generator}, nil
}

// CreateEmbedder creates the embedder selected by settings.
func CreateEmbedder(settings *domain.EmbeddingSettings) (driven.TextEmbedder, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider not configured", domain.ErrEmbeddingUnavailable)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbedder(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbedder(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}
}

// CreateGenerator creates the text generator selected by settings.
// A zero timeout leaves the adapter default.
func CreateGenerator(settings *domain.LLMSettings, timeout time.Duration) (driven.TextGenerator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider not configured", domain.ErrLLMUnavailable)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewGenerator(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewGenerator(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s",
			domain.ErrLLMUnavailable, settings.Provider)
	}
}

// ValidateEmbeddingConfig creates an embedder from settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbedder(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig creates a generator from settings and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateGenerator(settings, 0)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// Validator implements driven.AIConfigValidator with the functions above.
type Validator struct{}

// Ensure Validator implements the interface.
var _ driven.AIConfigValidator = Validator{}

// ValidateEmbedding pings the embedder described by config.
func (Validator) ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(ctx, config)
}

// ValidateLLM pings the generator described by config.
func (Validator) ValidateLLM(ctx context.Context, config *domain.LLMSettings) error {
	return ValidateLLMConfig(ctx, config)
}
