package ingestion

import "errors"

var (
	// ErrInvalidTransition indicates an attempt to move a document to a
	// status that is not the immediate successor of its current one, or to
	// move a terminal document at all.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoChunks indicates a processed document arrived at commit with an
	// empty chunk set.
	ErrNoChunks = errors.New("processed document has no chunks")

	// ErrChunkInvalid indicates a processed chunk with a bad offset range.
	ErrChunkInvalid = errors.New("invalid chunk")

	// ErrEmbeddingMissing indicates a processed chunk without an embedding
	// vector or model identifier.
	ErrEmbeddingMissing = errors.New("chunk embedding missing")

	// ErrDimensionMismatch indicates embedding vectors of differing
	// dimensions within one document.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingCountMismatch indicates the embedder returned a different
	// number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedder returned wrong vector count")
)
