package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
)

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
	getErr   error
	setErr   error
	set      map[string]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		set:      make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"llm.model", "retrieval.k"}
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer    string
	uploadErr error
	askErr    error

	uploadedUser string
	uploadedName string
	uploaded     string
	question     string
}

func (m *mockChatService) UploadDocument(
	_ context.Context,
	userID, filename string,
	content io.Reader,
) (*driving.UploadResult, error) {
	m.uploadedUser = userID
	m.uploadedName = filename
	b, _ := io.ReadAll(content)
	m.uploaded = string(b)
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &driving.UploadResult{Path: "/tmp/" + userID + "_" + filename, Chunks: 1}, nil
}

func (m *mockChatService) Ask(_ context.Context, _, question string) (string, error) {
	m.question = question
	return m.answer, m.askErr
}

func (m *mockChatService) IsModelReady() bool {
	return true
}

// mockEngine is a mock implementation of Engine.
type mockEngine struct {
	chat    *mockChatService
	loadErr error
	loaded  bool
	started bool
	closed  bool
}

func (m *mockEngine) Chat() driving.ChatService { return m.chat }
func (m *mockEngine) MetricsHandler() http.Handler { return nil }
func (m *mockEngine) Start(context.Context) { m.started = true }
func (m *mockEngine) Close() error { m.closed = true; return nil }
func (m *mockEngine) Load(context.Context) error { m.loaded = true; return m.loadErr }

// mockValidator is a mock implementation of driven.AIConfigValidator.
type mockValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockValidator) ValidateEmbedding(context.Context, *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockValidator) ValidateLLM(context.Context, *domain.LLMSettings) error {
	return m.llmErr
}
