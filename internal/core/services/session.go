package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatDeps holds the collaborators of a ChatService.
// Prompts and Metrics are optional.
type ChatDeps struct {
	Registry  *Registry
	Cache     *IndexCache
	Embedder  driven.TextEmbedder
	Extractor driven.TextExtractor
	Splitter  driven.TextSplitter
	Prompts   driven.PromptStore
	Metrics   driven.Metrics
}

// ChatService uploads documents and answers questions about them, one
// pipeline per user.
type ChatService struct {
	deps     ChatDeps
	settings domain.AppSettings
	log      *zap.Logger
}

// NewChatService creates a chat service.
func NewChatService(settings domain.AppSettings, deps ChatDeps) *ChatService {
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	return &ChatService{
		deps:     deps,
		settings: settings,
		log:      logger.Named("chat"),
	}
}

// IsModelReady reports whether the base language model has loaded.
func (s *ChatService) IsModelReady() bool {
	return s.deps.Registry.IsModelReady()
}

// State returns the lifecycle state of user's pipeline.
func (s *ChatService) State(userID string) PipelineState {
	return s.deps.Registry.State(userID)
}

// UploadDocument stores content as the user's document, indexes it and
// registers a new pipeline. On any failure the previous pipeline stays.
func (s *ChatService) UploadDocument(
	ctx context.Context,
	userID, filename string,
	content io.Reader,
) (*driving.UploadResult, error) {
	start := time.Now()

	if !s.IsModelReady() {
		return nil, domain.ErrModelLoading
	}
	if !domain.IsValidUserID(userID) {
		return nil, fmt.Errorf("%w: invalid user id %q", domain.ErrValidation, userID)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: no file content", domain.ErrValidation)
	}

	name := domain.SanitizeFilename(filename)
	if err := s.checkExtension(name); err != nil {
		return nil, err
	}

	end := s.deps.Registry.beginBuild(userID)
	defer end()

	log := s.log.With(zap.String("user_id", userID), zap.String("filename", name))
	log.Info("Updating retriever")

	tmp, err := s.writeUpload(name, content)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp) }()

	// Extract from the private temp file; the stored name may be shared
	// with another user's upload.
	pages, err := s.deps.Extractor.Extract(ctx, tmp)
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	path := filepath.Join(s.settings.UploadDir(), userID+"_"+name)
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("%w: store upload: %w", domain.ErrStorage, err)
	}

	chunks := s.deps.Splitter.SplitPages(pages)
	if !hasText(chunks) {
		return nil, fmt.Errorf("%w: no text found in %s", domain.ErrExtraction, name)
	}
	log.Debug("Document chunked", zap.Int("pages", len(pages)), zap.Int("chunks", len(chunks)))

	cacheDir := filepath.Join(s.settings.VectorStoreDir(), userID)
	result, err := s.deps.Cache.GetOrBuild(ctx, chunks, s.deps.Embedder, cacheDir)
	if err != nil {
		return nil, err
	}

	retriever := NewRetriever(result.Index, s.deps.Embedder, s.settings.Retrieval.K)
	pipeline := NewPipeline(
		retriever,
		s.deps.Registry.Generator(),
		s.promptTemplate(),
		GenerateOptionsFrom(s.settings.Generation),
	)
	// The replaced pipeline is left to in-flight questions that captured it.
	s.deps.Registry.SetPipeline(userID, pipeline)

	elapsed := time.Since(start)
	log.Info("Retriever updated",
		zap.String("fingerprint", result.Fingerprint),
		zap.Stringer("cache", result.Status),
		zap.Int("chunks", len(chunks)),
		zap.Duration("duration", elapsed),
	)

	return &driving.UploadResult{
		Path:        path,
		Chunks:      len(chunks),
		Fingerprint: result.Fingerprint,
		CacheHit:    result.Status == CacheHit,
		Duration:    elapsed,
	}, nil
}

// Ask answers question with the user's current pipeline.
func (s *ChatService) Ask(ctx context.Context, userID, question string) (string, error) {
	s.deps.Metrics.IncRequests()
	start := time.Now()

	if !s.IsModelReady() {
		return "", domain.ErrModelLoading
	}
	if !domain.IsValidUserID(userID) {
		return "", fmt.Errorf("%w: invalid user id %q", domain.ErrValidation, userID)
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrValidation)
	}

	pipeline, ok := s.deps.Registry.Pipeline(userID)
	if !ok {
		return "", domain.ErrNoDocument
	}

	s.log.Debug("Processing chat request", zap.String("user_id", userID))

	answer, err := pipeline.Answer(ctx, question)
	if err != nil {
		s.log.Error("Chat request failed", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	s.deps.Metrics.ObserveLatency(time.Since(start))
	return answer, nil
}

// checkExtension rejects filenames whose extension no extractor handles.
// Names without an extension are left to the extractor's default.
func (s *ChatService) checkExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || slices.Contains(s.deps.Extractor.Extensions(), ext) {
		return nil
	}
	return fmt.Errorf("%w: %w: %s", domain.ErrValidation, domain.ErrUnsupportedType, ext)
}

// writeUpload copies content to a uniquely named temp file in the upload
// dir. The file keeps the extension of name so extractors can dispatch on
// it. The caller renames it to {user}_{name} once the text is extracted.
func (s *ChatService) writeUpload(name string, content io.Reader) (string, error) {
	dir := s.settings.UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create upload dir: %w", domain.ErrStorage, err)
	}

	tmp := filepath.Join(dir, ".upload-"+uuid.NewString()+filepath.Ext(name))
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("%w: create upload: %w", domain.ErrStorage, err)
	}

	n, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: write upload: %w", domain.ErrStorage, err)
	}
	if n == 0 {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: empty file", domain.ErrValidation)
	}
	return tmp, nil
}

// promptTemplate returns the user-editable answer template, falling back
// to the built-in one.
func (s *ChatService) promptTemplate() string {
	if s.deps.Prompts == nil {
		return DefaultPromptTemplate
	}
	tmpl, err := s.deps.Prompts.Load(driven.PromptAnswer)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			s.log.Warn("Using built-in prompt template", zap.Error(err))
		}
		return DefaultPromptTemplate
	}
	return tmpl
}

func hasText(chunks []string) bool {
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// nopMetrics discards instrumentation events.
type nopMetrics struct{}

func (nopMetrics) IncRequests()                   {}
func (nopMetrics) ObserveLatency(time.Duration)   {}
func (nopMetrics) ObserveModelLoad(time.Duration) {}
func (nopMetrics) SetMemoryUsage(uint64)          {}
