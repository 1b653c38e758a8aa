package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// SidecarFile holds the fingerprint of the index stored beside it.
const SidecarFile = "content_hash.txt"

// CacheStatus tags the outcome of an index cache lookup.
type CacheStatus int

const (
	// CacheMiss means the index had to be embedded and built.
	CacheMiss CacheStatus = iota

	// CacheHit means a persisted index with a matching fingerprint was loaded.
	CacheHit
)

// String returns the status name.
func (s CacheStatus) String() string {
	if s == CacheHit {
		return "hit"
	}
	return "miss"
}

// CacheResult is the outcome of IndexCache.GetOrBuild.
type CacheResult struct {
	Status      CacheStatus
	Index       driven.VectorIndex
	Fingerprint string
}

// IndexFactory builds a searchable index from embedded chunks.
type IndexFactory func(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error)

// IndexCache maps a content fingerprint to a persisted vector index.
// The sidecar file in a cache directory always describes the index stored
// with it; any mismatch leads to a full rebuild.
type IndexCache struct {
	store    driven.IndexStore
	newIndex IndexFactory
	locks    keyedMutex
}

// NewIndexCache creates an index cache persisting through store.
func NewIndexCache(store driven.IndexStore, newIndex IndexFactory) *IndexCache {
	return &IndexCache{
		store:    store,
		newIndex: newIndex,
	}
}

// GetOrBuild returns the index for chunks embedded by embedder, loading it
// from dir when the stored fingerprint matches and building and persisting
// it otherwise. Writes to the same dir are serialised within the process.
func (c *IndexCache) GetOrBuild(
	ctx context.Context,
	chunks []string,
	embedder driven.TextEmbedder,
	dir string,
) (CacheResult, error) {
	fingerprint := Fingerprint(chunks, embedder.ModelName())

	unlock := c.locks.Lock(filepath.Clean(dir))
	defer unlock()

	result, err := c.lookup(ctx, dir, fingerprint)
	if err != nil {
		return CacheResult{}, err
	}
	if result.Status == CacheHit {
		logger.Debug("Index cache hit: dir=%s fingerprint=%s", dir, fingerprint)
		return result, nil
	}

	logger.Debug("Index cache miss: dir=%s fingerprint=%s chunks=%d", dir, fingerprint, len(chunks))
	return c.build(ctx, chunks, embedder, dir, fingerprint)
}

// lookup returns a hit when dir holds an index with the given fingerprint.
func (c *IndexCache) lookup(ctx context.Context, dir, fingerprint string) (CacheResult, error) {
	miss := CacheResult{Status: CacheMiss, Fingerprint: fingerprint}

	stored, err := ReadSidecar(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return miss, nil
		}
		return CacheResult{}, fmt.Errorf("%w: read fingerprint: %w", domain.ErrStorage, err)
	}
	if stored != fingerprint {
		logger.Debug("Index fingerprint changed: stored=%s current=%s", stored, fingerprint)
		return miss, nil
	}

	chunks, err := c.store.Load(ctx, dir)
	if err != nil {
		logger.Warn("Cached index in %s unreadable, rebuilding: %v", dir, err)
		return miss, nil
	}

	idx, err := c.newIndex(ctx, chunks)
	if err != nil {
		logger.Warn("Cached index in %s invalid, rebuilding: %v", dir, err)
		return miss, nil
	}

	return CacheResult{Status: CacheHit, Index: idx, Fingerprint: fingerprint}, nil
}

// build embeds chunks, persists them to dir and returns the new index.
func (c *IndexCache) build(
	ctx context.Context,
	texts []string,
	embedder driven.TextEmbedder,
	dir, fingerprint string,
) (CacheResult, error) {
	var vectors [][]float32
	if len(texts) > 0 {
		var err error
		vectors, err = embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return CacheResult{}, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		if len(vectors) != len(texts) {
			return CacheResult{}, fmt.Errorf("%w: got %d vectors for %d chunks",
				domain.ErrEmbedding, len(vectors), len(texts))
		}
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:        fmt.Sprintf("%s-%d", fingerprint, i),
			Position:  i,
			Content:   text,
			Embedding: vectors[i],
		}
	}

	idx, err := c.newIndex(ctx, chunks)
	if err != nil {
		return CacheResult{}, fmt.Errorf("%w: build index: %w", domain.ErrStorage, err)
	}

	if err := c.persist(ctx, dir, fingerprint, chunks); err != nil {
		_ = idx.Close()
		return CacheResult{}, err
	}

	return CacheResult{Status: CacheMiss, Index: idx, Fingerprint: fingerprint}, nil
}

// persist writes chunks and the sidecar into a sibling temp directory and
// swaps it into place. A failure leaves the previous dir untouched.
func (c *IndexCache) persist(ctx context.Context, dir, fingerprint string, chunks []domain.Chunk) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("%w: create cache root: %w", domain.ErrStorage, err)
	}

	tmp := dir + ".tmp-" + uuid.NewString()
	if err := c.store.Save(ctx, tmp, chunks); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("%w: save index: %w", domain.ErrStorage, err)
	}
	if err := os.WriteFile(filepath.Join(tmp, SidecarFile), []byte(fingerprint), 0o644); err != nil { //nolint:gosec // not secret
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("%w: write fingerprint: %w", domain.ErrStorage, err)
	}

	if err := swapDir(tmp, dir); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// swapDir replaces dir with tmp. The old dir is moved aside first so that
// dir is either the old or the new index at every point.
func swapDir(tmp, dir string) error {
	old := dir + ".old-" + uuid.NewString()

	hadOld := true
	if err := os.Rename(dir, old); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("move old index aside: %w", err)
		}
		hadOld = false
	}

	if err := os.Rename(tmp, dir); err != nil {
		if hadOld {
			_ = os.Rename(old, dir)
		}
		return fmt.Errorf("swap in new index: %w", err)
	}

	if hadOld {
		if err := os.RemoveAll(old); err != nil {
			logger.Warn("Failed to remove old index %s: %v", old, err)
		}
	}
	return nil
}

// ReadSidecar returns the fingerprint recorded in dir.
func ReadSidecar(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, SidecarFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
