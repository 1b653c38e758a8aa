package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c0", Position: 0, Content: "first chunk", Embedding: []float32{0.1, 0.2, 0.3}},
		{ID: "c1", Position: 1, Content: "second chunk", Embedding: []float32{-1, 0, 1.5}},
		{ID: "c2", Position: 2, Content: "日本語のチャンク", Embedding: []float32{3.25, -0.5, 0}},
	}
}

func TestIndexStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "vector_store", "alice")
	store := NewIndexStore()

	require.NoError(t, store.Save(ctx, dir, testChunks()))
	assert.FileExists(t, filepath.Join(dir, IndexFile))

	loaded, err := store.Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, testChunks(), loaded)
}

func TestIndexStore_LoadOrdersByPosition(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewIndexStore()

	chunks := testChunks()
	reversed := []domain.Chunk{chunks[2], chunks[0], chunks[1]}
	require.NoError(t, store.Save(ctx, dir, reversed))

	loaded, err := store.Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, chunks, loaded)
}

func TestIndexStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewIndexStore()

	require.NoError(t, store.Save(ctx, dir, testChunks()))

	replacement := []domain.Chunk{{ID: "x", Position: 0, Content: "only", Embedding: []float32{1}}}
	require.NoError(t, store.Save(ctx, dir, replacement))

	loaded, err := store.Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, replacement, loaded)
}

func TestIndexStore_SaveEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewIndexStore()

	require.NoError(t, store.Save(ctx, dir, nil))

	loaded, err := store.Load(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestIndexStore_Load_Missing(t *testing.T) {
	store := NewIndexStore()

	_, err := store.Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestIndexStore_Load_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("not a database"), 0o600))

	_, err := NewIndexStore().Load(context.Background(), dir)
	assert.Error(t, err)
}

func TestIndexStore_Load_IncompleteSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// A database with schema but no completed save has no chunk_count.
	db, err := open(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewIndexStore().Load(ctx, dir)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestMigrate_RecordsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFile)

	db, err := open(path)
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	// Reopening must not re-run applied migrations.
	db2, err := open(path)
	require.NoError(t, err)
	defer db2.Close()

	var rows int
	require.NoError(t, db2.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows))
	assert.Equal(t, 1, rows)

	var name string
	err = db2.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='chunks'").Scan(&name)
	require.NoError(t, err)
	assert.NotEqual(t, sql.ErrNoRows, err)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1, -1, 3.14159, 1e-7, -2.5e10}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
