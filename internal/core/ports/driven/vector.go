package driven

import (
	"context"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

// VectorIndex provides semantic similarity search operations over the
// chunks of a single document.
type VectorIndex interface {
	// Add inserts chunks. Every chunk must carry an embedding.
	Add(ctx context.Context, chunks ...domain.Chunk) error

	// Search finds the k nearest chunks to the query vector, most similar first.
	// Ties are ordered by chunk position.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Chunks returns every indexed chunk ordered by position.
	Chunks() []domain.Chunk

	// Len returns the number of indexed chunks.
	Len() int

	// Close releases resources.
	Close() error
}

// IndexStore persists the contents of a VectorIndex in a directory.
type IndexStore interface {
	// Save writes chunks and their embeddings into dir, replacing any previous content.
	Save(ctx context.Context, dir string, chunks []domain.Chunk) error

	// Load reads chunks and embeddings previously saved in dir, ordered by position.
	Load(ctx context.Context, dir string) ([]domain.Chunk, error)
}
