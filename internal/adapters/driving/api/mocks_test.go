package api

import (
	"context"
	"io"
	"sync"

	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
)

// mockChatService records calls and returns canned results.
type mockChatService struct {
	mu sync.Mutex

	ready     bool
	answer    string
	askErr    error
	uploadErr error
	result    *driving.UploadResult

	askedUser    string
	askedQ       string
	uploadUser   string
	uploadName   string
	uploadBody   string
	uploadCalled bool
}

func newMockChatService() *mockChatService {
	return &mockChatService{
		ready:  true,
		answer: "forty-two",
		result: &driving.UploadResult{Path: "/data/uploaded_pdfs/alice_guide.pdf", Chunks: 3},
	}
}

func (m *mockChatService) UploadDocument(
	_ context.Context,
	userID, filename string,
	content io.Reader,
) (*driving.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploadCalled = true
	m.uploadUser = userID
	m.uploadName = filename
	if content != nil {
		b, _ := io.ReadAll(content)
		m.uploadBody = string(b)
	}
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return m.result, nil
}

func (m *mockChatService) Ask(_ context.Context, userID, question string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.askedUser = userID
	m.askedQ = question
	if m.askErr != nil {
		return "", m.askErr
	}
	return m.answer, nil
}

func (m *mockChatService) IsModelReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}
