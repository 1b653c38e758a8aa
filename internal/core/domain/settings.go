package domain

import (
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any OpenAI-compatible server.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud or compatible)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkSettings controls how document text is split.
type ChunkSettings struct {
	// Size is the maximum number of characters per chunk.
	Size int

	// Overlap is the maximum number of characters shared by neighbouring chunks.
	Overlap int
}

// RetrievalSettings controls similarity search.
type RetrievalSettings struct {
	// K is the number of chunks retrieved per question.
	K int
}

// GenerationSettings holds the knobs passed to the language model.
type GenerationSettings struct {
	// MaxTokens is the maximum number of new tokens to generate.
	MaxTokens int

	// RepetitionPenalty discourages repeated tokens. 1.0 disables it.
	RepetitionPenalty float64

	// Temperature controls randomness (0.0 = model default).
	Temperature float64

	// StopWords end generation when the model emits one of them.
	StopWords []string
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Host is the interface to bind.
	Host string

	// Port is the TCP port to listen on.
	Port int

	// RequestTimeout bounds a single request, including generation.
	RequestTimeout time.Duration

	// ChatRate is the sustained chat requests per second allowed per user.
	// Zero disables rate limiting.
	ChatRate float64

	// ChatBurst is the number of chat requests a user may burst.
	ChatBurst int

	// MaxUploadBytes bounds the size of an uploaded document.
	MaxUploadBytes int64
}

// MonitorSettings controls background resource sampling.
type MonitorSettings struct {
	// MemoryInterval is the time between memory usage samples.
	MemoryInterval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	// RootDir is the working directory holding uploads, indexes and config.
	RootDir string

	Server     ServerSettings
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Chunking   ChunkSettings
	Retrieval  RetrievalSettings
	Generation GenerationSettings
	Monitor    MonitorSettings
}

// UploadDir returns the directory holding uploaded documents.
func (s AppSettings) UploadDir() string {
	return filepath.Join(s.RootDir, "uploaded_pdfs")
}

// VectorStoreDir returns the directory holding per-user index caches.
func (s AppSettings) VectorStoreDir() string {
	return filepath.Join(s.RootDir, "vector_store")
}

// PromptDir returns the directory holding user-editable prompt templates.
func (s AppSettings) PromptDir() string {
	return filepath.Join(s.RootDir, "prompts")
}

// Default values for AppSettings.
const (
	DefaultPort              = 8000
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 100
	DefaultRetrievalK        = 2
	DefaultMaxTokens         = 256
	DefaultRepetitionPenalty = 1.2
	DefaultRequestTimeout    = 5 * time.Minute
	DefaultMemoryInterval    = 5 * time.Second
	DefaultMaxUploadBytes    = 50 << 20
)

// DefaultAppSettings returns settings with sensible defaults.
// Both AI providers default to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RootDir: ".",
		Server: ServerSettings{
			Host:           "0.0.0.0",
			Port:           DefaultPort,
			RequestTimeout: DefaultRequestTimeout,
			ChatRate:       5,
			ChatBurst:      10,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Chunking: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			K: DefaultRetrievalK,
		},
		Generation: GenerationSettings{
			MaxTokens:         DefaultMaxTokens,
			RepetitionPenalty: DefaultRepetitionPenalty,
			StopWords:         DefaultStopWords(),
		},
		Monitor: MonitorSettings{
			MemoryInterval: DefaultMemoryInterval,
		},
	}
}

// DefaultStopWords returns the stop sequences used when none are configured.
// They keep the model from inventing a follow-up question after its answer.
func DefaultStopWords() []string {
	return []string{"\nQuestion:"}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
// all-minilm is the Ollama build of sentence-transformers/all-MiniLM-L6-v2.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
// qwen2.5:0.5b is the Ollama build of Qwen/Qwen2.5-0.5B-Instruct.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "qwen2.5:0.5b",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
