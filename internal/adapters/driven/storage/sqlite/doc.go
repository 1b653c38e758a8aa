// Package sqlite persists vector indexes as SQLite databases.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each cache directory holds one
// database file, index.db, with every chunk of one document and its
// embedding stored as a little-endian float32 blob.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// Save replaces the content of a database in a single transaction. Callers
// writing the same directory concurrently must serialise themselves.
package sqlite
