package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	ready  bool
	answer string
	result *driving.UploadResult
	err    error

	gotUser     string
	gotFilename string
	gotContent  string
	gotQuestion string
}

func (m *mockChatService) UploadDocument(
	_ context.Context,
	userID, filename string,
	content io.Reader,
) (*driving.UploadResult, error) {
	m.gotUser = userID
	m.gotFilename = filename
	b, _ := io.ReadAll(content)
	m.gotContent = string(b)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockChatService) Ask(_ context.Context, userID, question string) (string, error) {
	m.gotUser = userID
	m.gotQuestion = question
	return m.answer, m.err
}

func (m *mockChatService) IsModelReady() bool {
	return m.ready
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Set(_, _ string) error {
	return m.err
}

func (m *mockSettingsService) Keys() []string {
	return nil
}
