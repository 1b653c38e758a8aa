// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// TextGenerator produces text from a prompt. It is the opaque language-model
// capability the answer pipeline depends on.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI and OpenAI-compatible inference servers (vLLM, LM Studio)
type TextGenerator interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to decide when the model is ready.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
// Zero values leave the provider default in place.
type GenerateOptions struct {
	// MaxTokens is the maximum number of new tokens to generate.
	MaxTokens int

	// RepetitionPenalty discourages repeated tokens (1.0 = off).
	RepetitionPenalty float64

	// Temperature controls randomness (0.0 = model default).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
