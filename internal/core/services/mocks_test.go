package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/ragserve/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// mockEmbedder implements driven.TextEmbedder with a deterministic
// letter-frequency embedding so that related texts score higher.
type mockEmbedder struct {
	model      string
	embedErr   error
	batchCalls atomic.Int32
	embedCalls atomic.Int32
	embedded   atomic.Int32
	pingErr    error
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	m.embedded.Add(int32(len(texts)))
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return 26 }

func (m *mockEmbedder) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbedder) Ping(_ context.Context) error { return m.pingErr }

func (m *mockEmbedder) Close() error { return nil }

// mockGenerator implements driven.TextGenerator, recording its inputs.
type mockGenerator struct {
	mu       sync.Mutex
	output   string
	err      error
	pingErr  error
	delay    time.Duration
	prompts  []string
	lastOpts driven.GenerateOptions
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

func (m *mockGenerator) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockGenerator) ModelName() string { return "mock-llm" }

func (m *mockGenerator) Ping(_ context.Context) error { return m.pingErr }

func (m *mockGenerator) Close() error { return nil }

// fileIndexStore implements driven.IndexStore as a JSON file per directory.
type fileIndexStore struct {
	saveErr error
	loadErr error
	saves   atomic.Int32
	loads   atomic.Int32
}

const fileIndexName = "index.json"

func (s *fileIndexStore) Save(_ context.Context, dir string, chunks []domain.Chunk) error {
	s.saves.Add(1)
	if s.saveErr != nil {
		return s.saveErr
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(chunks)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fileIndexName), data, 0o600)
}

func (s *fileIndexStore) Load(_ context.Context, dir string) ([]domain.Chunk, error) {
	s.loads.Add(1)
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	data, err := os.ReadFile(filepath.Join(dir, fileIndexName))
	if err != nil {
		return nil, err
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// memoryIndexFactory builds in-memory indexes.
func memoryIndexFactory(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	return memory.FromChunks(ctx, chunks)
}

// mockExtractor implements driven.TextExtractor.
type mockExtractor struct {
	mu       sync.Mutex
	pages    []string
	err      error
	exts     []string
	paths    []string
	contents []string
	before   func()
}

func (m *mockExtractor) Extensions() []string {
	if m.exts == nil {
		return []string{".pdf"}
	}
	return m.exts
}

func (m *mockExtractor) Extract(_ context.Context, path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.before != nil {
		m.before()
	}
	m.paths = append(m.paths, path)
	if data, err := os.ReadFile(path); err == nil {
		m.contents = append(m.contents, string(data))
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.pages, nil
}

// mockMetrics implements driven.Metrics.
type mockMetrics struct {
	mu         sync.Mutex
	requests   int
	latencies  []time.Duration
	modelLoads []time.Duration
	memory     []uint64
}

func (m *mockMetrics) IncRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
}

func (m *mockMetrics) ObserveLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies = append(m.latencies, d)
}

func (m *mockMetrics) ObserveModelLoad(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelLoads = append(m.modelLoads, d)
}

func (m *mockMetrics) SetMemoryUsage(bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memory = append(m.memory, bytes)
}

func (m *mockMetrics) snapshot() (int, int, int, []uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests, len(m.latencies), len(m.modelLoads), append([]uint64(nil), m.memory...)
}

// mockProbe implements driven.MemoryProbe, failing on selected calls.
type mockProbe struct {
	calls  atomic.Int32
	failOn map[int32]bool
}

var errProbe = errors.New("probe failed")

func (m *mockProbe) ResidentBytes() (uint64, error) {
	n := m.calls.Add(1)
	if m.failOn[n] {
		return 0, errProbe
	}
	return uint64(n) * 1024, nil
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockConfigStore implements driven.ConfigStore over a map.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string { return "config.toml" }
