package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Short key", "abc123", "****"},
		{"Exactly 8 chars", "12345678", "****"},
		{"Long key", "sk-1234567890abcdef", "sk-1...cdef"},
		{"Empty key", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestConfigShow(t *testing.T) {
	settings := newMockSettingsService()
	settings.settings.RootDir = "/srv/rag"
	settings.settings.LLM.Provider = domain.AIProviderOpenAI
	settings.settings.LLM.APIKey = "sk-1234567890abcdef"
	withServices(t, settings, nil)

	out, err := run(t, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "Root: /srv/rag")
	assert.Contains(t, out, "Uploads: /srv/rag/uploaded_pdfs")
	assert.Contains(t, out, "Provider: OpenAI (cloud or compatible)")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Chunk size: 1000")
	assert.Contains(t, out, "Retrieved chunks (k): 2")
}

func TestConfigShow_NoService(t *testing.T) {
	withServices(t, nil, nil)

	_, err := run(t, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestConfigSet(t *testing.T) {
	settings := newMockSettingsService()
	withServices(t, settings, nil)

	out, err := run(t, "config", "set", "retrieval.k", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Set retrieval.k = 4")
	assert.Equal(t, "4", settings.set["retrieval.k"])

	out, err = run(t, "config", "set", "llm.api_key", "sk-abcdefghijkl")
	require.NoError(t, err)
	assert.Contains(t, out, "Set llm.api_key = sk-a...ijkl")
}

func TestConfigSet_Error(t *testing.T) {
	settings := newMockSettingsService()
	settings.setErr = domain.ErrValidation
	withServices(t, settings, nil)

	_, err := run(t, "config", "set", "bogus", "1")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfigKeys(t *testing.T) {
	withServices(t, newMockSettingsService(), nil)

	out, err := run(t, "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "llm.model\nretrieval.k\n")
}

func TestConfigCheck(t *testing.T) {
	t.Run("all reachable", func(t *testing.T) {
		withServices(t, newMockSettingsService(), nil)
		SetConfigValidator(&mockValidator{})

		out, err := run(t, "config", "check")
		require.NoError(t, err)
		assert.Contains(t, out, "Embedding: ok")
		assert.Contains(t, out, "LLM: ok")
	})

	t.Run("llm down", func(t *testing.T) {
		withServices(t, newMockSettingsService(), nil)
		SetConfigValidator(&mockValidator{llmErr: domain.ErrLLMUnavailable})

		out, err := run(t, "config", "check")
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, out, "LLM: FAILED")
	})

	t.Run("no validator", func(t *testing.T) {
		withServices(t, newMockSettingsService(), nil)
		configValidator = nil

		_, err := run(t, "config", "check")
		require.Error(t, err)
	})

	t.Run("settings error", func(t *testing.T) {
		settings := newMockSettingsService()
		settings.getErr = errors.New("bad toml")
		withServices(t, settings, nil)
		SetConfigValidator(&mockValidator{})

		_, err := run(t, "config", "check")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad toml")
	})
}
