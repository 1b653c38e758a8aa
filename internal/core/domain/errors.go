package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// Adapters wrap the underlying cause with one of these so callers can
// classify a failure with errors.Is regardless of where it happened.
var (
	// ErrExtraction indicates document text could not be obtained.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbedding indicates the embedding capability failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStorage indicates the vector index could not be persisted or loaded.
	ErrStorage = errors.New("storage failed")

	// ErrGeneration indicates the language model failed to produce text.
	ErrGeneration = errors.New("generation failed")

	// ErrNotReady indicates a requested pipeline or the base model is absent.
	ErrNotReady = errors.New("not ready")

	// ErrValidation indicates a bad filename, user id or empty upload.
	ErrValidation = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// Readiness errors. Both match ErrNotReady.
var (
	// ErrModelLoading is returned while the base model has not finished loading.
	ErrModelLoading = fmt.Errorf("%w: LLM is still loading. Please wait", ErrNotReady)

	// ErrNoDocument is returned when a user asks before uploading a document.
	ErrNoDocument = fmt.Errorf("%w: no document uploaded yet. Upload a PDF first", ErrNotReady)
)
