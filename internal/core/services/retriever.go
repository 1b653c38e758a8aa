package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Retriever finds the chunks of one document most relevant to a question.
type Retriever struct {
	index    driven.VectorIndex
	embedder driven.TextEmbedder
	k        int
}

// NewRetriever creates a retriever returning up to k chunks per query.
// A non-positive k falls back to domain.DefaultRetrievalK.
func NewRetriever(index driven.VectorIndex, embedder driven.TextEmbedder, k int) *Retriever {
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
		k:        k,
	}
}

// K returns the number of chunks returned per query.
func (r *Retriever) K() int {
	return r.k
}

// Query embeds text and returns the content of the nearest chunks,
// most similar first.
func (r *Retriever) Query(ctx context.Context, text string) ([]string, error) {
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrEmbedding, err)
	}

	hits, err := r.index.Search(ctx, vec, r.k)
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %w", domain.ErrStorage, err)
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Chunk.Content
	}
	return out, nil
}

// Close releases the underlying index.
func (r *Retriever) Close() error {
	return r.index.Close()
}
