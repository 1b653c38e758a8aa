package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// ModelLoader brings the base model up and flips the registry's ready flag.
type ModelLoader struct {
	registry  *Registry
	generator driven.TextGenerator
	embedder  driven.TextEmbedder
	metrics   driven.Metrics
	timeout   time.Duration
	log       *zap.Logger
}

// NewModelLoader creates a loader. metrics may be nil. A non-positive
// timeout means the load is bounded only by the caller's context.
func NewModelLoader(
	registry *Registry,
	generator driven.TextGenerator,
	embedder driven.TextEmbedder,
	metrics driven.Metrics,
	timeout time.Duration,
) *ModelLoader {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ModelLoader{
		registry:  registry,
		generator: generator,
		embedder:  embedder,
		metrics:   metrics,
		timeout:   timeout,
		log:       logger.Named("loader"),
	}
}

// Load checks that the generator and embedder respond, records the load
// time and marks the model ready. On failure the model stays not ready.
func (l *ModelLoader) Load(ctx context.Context) error {
	start := time.Now()
	l.log.Info("Loading LLM", zap.String("model", l.generator.ModelName()))

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if err := l.generator.Ping(ctx); err != nil {
		l.log.Error("LLM model load failed", zap.Error(err))
		return fmt.Errorf("load generator %s: %w", l.generator.ModelName(), err)
	}
	if err := l.embedder.Ping(ctx); err != nil {
		l.log.Error("Embedding model load failed", zap.Error(err))
		return fmt.Errorf("load embedder %s: %w", l.embedder.ModelName(), err)
	}

	elapsed := time.Since(start)
	l.metrics.ObserveModelLoad(elapsed)
	l.registry.SetGenerator(l.generator)
	l.registry.SetModelReady(true)

	l.log.Info("LLM model loaded successfully", zap.Duration("duration", elapsed))
	return nil
}

// LoadAsync runs Load in the background. The returned channel receives the
// result and is then closed.
func (l *ModelLoader) LoadAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- l.Load(ctx)
	}()
	return done
}
