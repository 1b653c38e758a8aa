package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ollamaembed "github.com/custodia-labs/ragserve/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragserve/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/ragserve/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragserve/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragserve/internal/core/domain"
)

func TestCreateEmbedder(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantType any
		wantErr  bool
	}{
		{"nil settings", nil, nil, true},
		{"ollama", &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "all-minilm"}, &ollamaembed.Embedder{}, false},
		{"openai", &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"}, &openaiembed.Embedder{}, false},
		{"openai without key", &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, nil, true},
		{"unknown provider", &domain.EmbeddingSettings{Provider: "cohere"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbedder(tt.settings)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateEmbedder_Model(t *testing.T) {
	svc, err := CreateEmbedder(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
}

func TestCreateGenerator(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantType any
		wantErr  bool
	}{
		{"nil settings", nil, nil, true},
		{"ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "qwen2.5:0.5b"}, &ollamallm.Generator{}, false},
		{"openai", &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"}, &openaillm.Generator{}, false},
		{"openai without key", &domain.LLMSettings{Provider: domain.AIProviderOpenAI}, nil, true},
		{"unknown provider", &domain.LLMSettings{Provider: "anthropic"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateGenerator(tt.settings, time.Minute)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateServices(t *testing.T) {
	settings := domain.DefaultAppSettings()

	svcs, err := CreateServices(&settings, time.Minute)
	require.NoError(t, err)
	defer svcs.Close()

	assert.Equal(t, "all-minilm", svcs.Embedder.ModelName())
	assert.Equal(t, "qwen2.5:0.5b", svcs.Generator.ModelName())
}

func TestCreateServices_GeneratorError(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderOpenAI

	_, err := CreateServices(&settings, 0)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestServices_Close_Nil(t *testing.T) {
	s := &Services{}
	assert.NotPanics(t, s.Close)
}

func ollamaServer(t *testing.T, status int) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestValidateLLMConfig(t *testing.T) {
	ok := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: ollamaServer(t, http.StatusOK)}
	assert.NoError(t, ValidateLLMConfig(context.Background(), ok))

	down := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: ollamaServer(t, http.StatusBadGateway)}
	assert.ErrorIs(t, ValidateLLMConfig(context.Background(), down), domain.ErrLLMUnavailable)

	assert.ErrorIs(t, ValidateLLMConfig(context.Background(), nil), domain.ErrLLMUnavailable)
}

func TestValidateEmbeddingConfig(t *testing.T) {
	ok := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: ollamaServer(t, http.StatusOK)}
	assert.NoError(t, ValidateEmbeddingConfig(context.Background(), ok))

	down := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: ollamaServer(t, http.StatusNotFound)}
	assert.ErrorIs(t, ValidateEmbeddingConfig(context.Background(), down), domain.ErrEmbeddingUnavailable)
}

func TestValidator(t *testing.T) {
	v := Validator{}
	url := ollamaServer(t, http.StatusOK)

	assert.NoError(t, v.ValidateLLM(context.Background(),
		&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: url}))
	assert.NoError(t, v.ValidateEmbedding(context.Background(),
		&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: url}))

	noKey := &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}
	assert.ErrorIs(t, v.ValidateEmbedding(context.Background(), noKey), domain.ErrEmbeddingUnavailable)
}
