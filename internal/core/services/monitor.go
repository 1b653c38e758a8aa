package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// MemoryMonitor samples process memory into the metrics sink on a fixed
// interval. Sampling errors are logged and the loop carries on.
type MemoryMonitor struct {
	probe    driven.MemoryProbe
	metrics  driven.Metrics
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewMemoryMonitor creates a monitor. A non-positive interval falls back to
// domain.DefaultMemoryInterval.
func NewMemoryMonitor(probe driven.MemoryProbe, metrics driven.Metrics, interval time.Duration) *MemoryMonitor {
	if interval <= 0 {
		interval = domain.DefaultMemoryInterval
	}
	return &MemoryMonitor{
		probe:    probe,
		metrics:  metrics,
		interval: interval,
		log:      logger.Named("monitor"),
	}
}

// Start begins sampling in the background. It samples once immediately.
// Calling Start on a running monitor does nothing.
func (m *MemoryMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})

	m.wg.Add(1)
	go m.run(ctx, m.stopCh)
}

// Stop ends sampling and waits for the loop to exit.
func (m *MemoryMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *MemoryMonitor) run(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

func (m *MemoryMonitor) sample() {
	rss, err := m.probe.ResidentBytes()
	if err != nil {
		m.log.Error("Memory monitoring error", zap.Error(err))
		return
	}
	m.metrics.SetMemoryUsage(rss)
}
