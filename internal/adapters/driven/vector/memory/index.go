// Package memory provides an in-memory VectorIndex using brute-force cosine
// similarity. A single document produces at most a few thousand chunks, so
// an exact scan is fast and makes result order fully deterministic.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Errors returned by Index.
var (
	ErrMissingEmbedding  = errors.New("chunk has no embedding")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrClosed            = errors.New("index closed")
)

// Index is an exact nearest-neighbour index over chunk embeddings.
type Index struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
	norms     []float64
	closed    bool
}

// New creates an empty index. The dimension is fixed by the first chunk added.
func New() *Index {
	return &Index{}
}

// FromChunks builds an index holding chunks.
func FromChunks(ctx context.Context, chunks []domain.Chunk) (*Index, error) {
	idx := New()
	if err := idx.Add(ctx, chunks...); err != nil {
		return nil, err
	}
	return idx, nil
}

// Add inserts chunks. Every chunk must carry an embedding of the index dimension.
func (i *Index) Add(_ context.Context, chunks ...domain.Chunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrClosed
	}

	dim := i.dimension
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d", ErrMissingEmbedding, c.Position)
		}
		if dim == 0 {
			dim = len(c.Embedding)
		}
		if len(c.Embedding) != dim {
			return fmt.Errorf("%w: chunk %d has %d, want %d",
				ErrDimensionMismatch, c.Position, len(c.Embedding), dim)
		}
	}

	i.dimension = dim
	for _, c := range chunks {
		i.chunks = append(i.chunks, c)
		i.norms = append(i.norms, norm(c.Embedding))
	}
	return nil
}

// Search returns the k chunks most similar to query, most similar first.
// Chunks with equal similarity are ordered by position.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, ErrClosed
	}
	if k <= 0 || len(i.chunks) == 0 {
		return nil, nil
	}
	if len(query) != i.dimension {
		return nil, fmt.Errorf("%w: query has %d, want %d", ErrDimensionMismatch, len(query), i.dimension)
	}

	qn := norm(query)
	scored := make([]domain.ScoredChunk, len(i.chunks))
	for j, c := range i.chunks {
		scored[j] = domain.ScoredChunk{
			Chunk:      c,
			Similarity: cosine(query, c.Embedding, qn, i.norms[j]),
		}
	}

	slices.SortStableFunc(scored, func(a, b domain.ScoredChunk) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return a.Chunk.Position - b.Chunk.Position
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Chunks returns every indexed chunk ordered by position.
func (i *Index) Chunks() []domain.Chunk {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := slices.Clone(i.chunks)
	slices.SortStableFunc(out, func(a, b domain.Chunk) int {
		return a.Position - b.Position
	})
	return out
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.chunks)
}

// Dimension returns the embedding dimension, or 0 when empty.
func (i *Index) Dimension() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dimension
}

// Close releases the stored vectors.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	i.chunks = nil
	i.norms = nil
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns the cosine similarity of a and b. Zero vectors score 0.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for j := range a {
		dot += float64(a[j]) * float64(b[j])
	}
	return dot / (na * nb)
}
