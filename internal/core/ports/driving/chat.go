package driving

import (
	"context"
	"io"
	"time"
)

// ChatService answers questions about per-user uploaded documents.
type ChatService interface {
	// UploadDocument stores a document for userID, indexes it and makes it the
	// user's active document. A failed upload leaves the previous one active.
	UploadDocument(ctx context.Context, userID, filename string, content io.Reader) (*UploadResult, error)

	// Ask answers a question using the user's active document.
	Ask(ctx context.Context, userID, question string) (string, error)

	// IsModelReady reports whether the base language model has loaded.
	IsModelReady() bool
}

// UploadResult describes a successfully indexed document.
type UploadResult struct {
	// Path is where the document was stored.
	Path string

	// Chunks is the number of chunks indexed.
	Chunks int

	// Fingerprint is the content digest keying the index cache.
	Fingerprint string

	// CacheHit is true when the persisted index was reused.
	CacheHit bool

	// Duration is the total time spent indexing.
	Duration time.Duration
}
