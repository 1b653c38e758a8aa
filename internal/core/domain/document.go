package domain

// Chunk represents a searchable unit within a document.
// Chunks are the unit of embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Position is the ordinal position within the document.
	// Retrieval uses it to break similarity ties.
	Position int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// ScoredChunk is a chunk returned by similarity search.
type ScoredChunk struct {
	Chunk Chunk

	// Similarity is the cosine similarity to the query (-1 to 1).
	Similarity float64
}

// ChunkContents returns the text of each chunk in order.
func ChunkContents(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i := range chunks {
		out[i] = chunks[i].Content
	}
	return out
}
