package driven

import "context"

// TextExtractor obtains plain text from a stored document.
type TextExtractor interface {
	// Extensions returns the lower-case file extensions handled, including the dot.
	Extensions() []string

	// Extract returns the text of the document at path, one entry per page.
	// Formats without pages return a single entry.
	Extract(ctx context.Context, path string) ([]string, error)
}
