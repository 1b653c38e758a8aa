package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/custodia-labs/ragserve/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragserve/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragserve/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/ragserve/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragserve/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ragserve/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
	"github.com/custodia-labs/ragserve/internal/core/services"
	"github.com/custodia-labs/ragserve/internal/extractors"
	"github.com/custodia-labs/ragserve/internal/logger"
	"github.com/custodia-labs/ragserve/internal/postprocessors/chunker"
)

// engine wires the adapters into the chat service.
type engine struct {
	ai       *ai.Services
	chat     *services.ChatService
	loader   *services.ModelLoader
	monitor  *services.MemoryMonitor
	recorder *prometheus.Recorder
}

// Ensure engine implements the interface.
var _ cli.Engine = (*engine)(nil)

// newEngine builds the pipeline. Nothing contacts the model until Load or Start.
func newEngine(settings *domain.AppSettings) (cli.Engine, error) {
	aiServices, err := ai.CreateServices(settings, settings.Server.RequestTimeout)
	if err != nil {
		return nil, err
	}

	recorder := prometheus.NewRecorder(prometheus.WithProcessCollectors())
	registry := services.NewRegistry()

	chat := services.NewChatService(*settings, services.ChatDeps{
		Registry:  registry,
		Cache:     services.NewIndexCache(sqlite.NewIndexStore(), newMemoryIndex),
		Embedder:  aiServices.Embedder,
		Extractor: extractors.DefaultRegistry(),
		Splitter: chunker.New(
			chunker.WithChunkSize(settings.Chunking.Size),
			chunker.WithOverlap(settings.Chunking.Overlap),
		),
		Prompts: file.NewPromptStore(settings.PromptDir()),
		Metrics: recorder,
	})

	return &engine{
		ai:   aiServices,
		chat: chat,
		loader: services.NewModelLoader(
			registry, aiServices.Generator, aiServices.Embedder, recorder, settings.Server.RequestTimeout,
		),
		monitor:  services.NewMemoryMonitor(prometheus.NewProcessProbe(), recorder, settings.Monitor.MemoryInterval),
		recorder: recorder,
	}, nil
}

// newMemoryIndex builds the in-memory search index for the index cache.
func newMemoryIndex(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	idx, err := memory.FromChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (e *engine) Chat() driving.ChatService {
	return e.chat
}

func (e *engine) MetricsHandler() http.Handler {
	return e.recorder.Handler()
}

func (e *engine) Load(ctx context.Context) error {
	return e.loader.Load(ctx)
}

// Start loads the model in the background and samples memory until ctx ends.
// A failed load is logged by the loader; the service stays not ready.
func (e *engine) Start(ctx context.Context) {
	e.monitor.Start(ctx)
	done := e.loader.LoadAsync(ctx)
	go func() {
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Warn("Serving without a model; /health reports unhealthy", zap.Error(err))
		}
	}()
}

func (e *engine) Close() error {
	e.monitor.Stop()
	e.ai.Close()
	return nil
}
