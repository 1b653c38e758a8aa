package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragserve/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// IndexFile is the database filename inside a cache directory.
const IndexFile = "index.db"

// ErrIndexNotFound is returned by Load when dir holds no index.
var ErrIndexNotFound = errors.New("index not found")

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore saves and loads chunk embeddings in per-directory SQLite files.
type IndexStore struct{}

// NewIndexStore creates a new SQLite index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

// Save writes chunks into dir/index.db, replacing any previous content.
// dir is created if missing.
func (s *IndexStore) Save(ctx context.Context, dir string, chunks []domain.Chunk) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	db, err := open(filepath.Join(dir, IndexFile))
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("clearing metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, id, content, dimension, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.Position, c.ID, c.Content,
			len(c.Embedding), float32SliceToBytes(c.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Position, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO index_meta (key, value) VALUES ('chunk_count', ?)",
		strconv.Itoa(len(chunks))); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// Load reads the chunks saved in dir ordered by position.
// It returns ErrIndexNotFound when dir holds no index.
func (s *IndexStore) Load(ctx context.Context, dir string) ([]domain.Chunk, error) {
	path := filepath.Join(dir, IndexFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, dir)
		}
		return nil, fmt.Errorf("checking index file: %w", err)
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var want int
	var count string
	err = db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = 'chunk_count'").Scan(&count)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: %s has no completed save", ErrIndexNotFound, dir)
	case err != nil:
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	if want, err = strconv.Atoi(count); err != nil {
		return nil, fmt.Errorf("parsing chunk count %q: %w", count, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT position, id, content, dimension, embedding
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]domain.Chunk, 0, want)
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	if len(chunks) != want {
		return nil, fmt.Errorf("index holds %d chunks, metadata says %d", len(chunks), want)
	}
	return chunks, nil
}

// open opens the database at path and applies pending migrations.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// migrate applies every *.up.sql file newer than the recorded schema version.
func migrate(db *sql.DB, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// scanChunk scans a chunk row.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var c domain.Chunk
	var dim int
	var blob []byte

	if err := rows.Scan(&c.Position, &c.ID, &c.Content, &dim, &blob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	c.Embedding = bytesToFloat32Slice(blob)
	if len(c.Embedding) != dim {
		return nil, fmt.Errorf("chunk %d: embedding has %d values, want %d", c.Position, len(c.Embedding), dim)
	}
	return &c, nil
}

// float32SliceToBytes converts []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
