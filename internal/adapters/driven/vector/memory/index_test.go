package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

func chunk(pos int, content string, emb ...float32) domain.Chunk {
	return domain.Chunk{Position: pos, Content: content, Embedding: emb}
}

func TestIndex_Search(t *testing.T) {
	ctx := context.Background()
	idx, err := FromChunks(ctx, []domain.Chunk{
		chunk(0, "north", 0, 1),
		chunk(1, "east", 1, 0),
		chunk(2, "north-east", 1, 1),
	})
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{0, 2}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "north", results[0].Chunk.Content)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.Equal(t, "north-east", results[1].Chunk.Content)
	assert.InDelta(t, 0.7071, results[1].Similarity, 1e-3)
}

func TestIndex_Search_TiesOrderedByPosition(t *testing.T) {
	ctx := context.Background()
	idx := New()
	require.NoError(t, idx.Add(ctx,
		chunk(3, "d", 1, 0),
		chunk(1, "b", 1, 0),
		chunk(2, "c", 1, 0),
		chunk(0, "a", 0, 1),
	))

	results, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"b", "c", "d"}, []string{
		results[0].Chunk.Content, results[1].Chunk.Content, results[2].Chunk.Content,
	})
}

func TestIndex_Search_KLargerThanIndex(t *testing.T) {
	ctx := context.Background()
	idx, err := FromChunks(ctx, []domain.Chunk{chunk(0, "only", 1, 0)})
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestIndex_Search_Empty(t *testing.T) {
	results, err := New().Search(context.Background(), []float32{1}, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_Search_ZeroK(t *testing.T) {
	ctx := context.Background()
	idx, err := FromChunks(ctx, []domain.Chunk{chunk(0, "x", 1)})
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_Search_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx, err := FromChunks(ctx, []domain.Chunk{chunk(0, "x", 1, 0)})
	require.NoError(t, err)

	_, err = idx.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_Search_ZeroVector(t *testing.T) {
	ctx := context.Background()
	idx, err := FromChunks(ctx, []domain.Chunk{chunk(0, "zero", 0, 0), chunk(1, "one", 1, 0)})
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "one", results[0].Chunk.Content)
	assert.Zero(t, results[1].Similarity)
}

func TestIndex_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("missing embedding", func(t *testing.T) {
		err := New().Add(ctx, domain.Chunk{Position: 0, Content: "x"})
		assert.ErrorIs(t, err, ErrMissingEmbedding)
	})

	t.Run("dimension fixed by first chunk", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(ctx, chunk(0, "a", 1, 2, 3)))
		assert.Equal(t, 3, idx.Dimension())

		err := idx.Add(ctx, chunk(1, "b", 1, 2))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("mismatch within batch adds nothing", func(t *testing.T) {
		idx := New()
		err := idx.Add(ctx, chunk(0, "a", 1, 2), chunk(1, "b", 1))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Zero(t, idx.Len())
	})
}

func TestIndex_Chunks_OrderedByPosition(t *testing.T) {
	ctx := context.Background()
	idx, err := FromChunks(ctx, []domain.Chunk{
		chunk(2, "c", 1), chunk(0, "a", 1), chunk(1, "b", 1),
	})
	require.NoError(t, err)

	chunks := idx.Chunks()
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b", "c"}, domain.ChunkContents(chunks))
}

func TestIndex_Close(t *testing.T) {
	ctx := context.Background()
	idx, err := FromChunks(ctx, []domain.Chunk{chunk(0, "a", 1)})
	require.NoError(t, err)

	require.NoError(t, idx.Close())
	assert.Zero(t, idx.Len())

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, idx.Add(ctx, chunk(1, "b", 1)), ErrClosed)
}
