package driven

// TextSplitter breaks extracted document text into chunks for embedding.
type TextSplitter interface {
	// SplitPages splits every page independently and returns the chunks
	// in page order. Empty pages produce no chunks.
	SplitPages(pages []string) []string
}
