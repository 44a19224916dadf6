package storage

import (
	"context"

	"github.com/guilhermexp/recall/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing documents and the
// content-key index that backs deduplication.
type DocumentRepository interface {
	Repository

	// CreateDocument stores a new document and writes its content-key
	// index entry in the same transaction. Assigns Id from sequence and
	// sets CreatedAt/UpdatedAt.
	//
	// The (TenantID, ContentHash) pair is unique per tenant. If another
	// document already holds the key, or a concurrent transaction commits
	// it first, ErrDuplicateKey is returned and nothing is written. The
	// caller must treat that as "document already exists", not as a hard
	// failure.
	CreateDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// FindDocumentByContentKey resolves the content-key index for a tenant.
	// Returns ErrNotFound when no document holds the key.
	FindDocumentByContentKey(ctx context.Context, tenantID, contentHash string) (*core.Document, error)

	// ApplyTransition atomically mutates a document and its job record
	// within one transaction. fn receives the current rows and edits them
	// in place; UpdatedAt is bumped on both after fn returns. Returns
	// ErrNotFound if either row is missing.
	ApplyTransition(ctx context.Context, documentID core.ID, fn func(doc *core.Document, job *core.IngestionJob) error) error

	// AddContainerTags links a document to additional container tags,
	// ignoring tags it already carries.
	AddContainerTags(ctx context.Context, id core.ID, tags ...string) error

	// ListDocuments returns all documents, in unspecified order.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document together with its content-key
	// index entry, chunks, job and memory rows.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error
}

// ChunkRepository provides operations for managing document chunks.
type ChunkRepository interface {
	Repository

	// InsertChunks stores chunk rows for a document in batch order.
	// Assigns Ids from sequence and sets CreatedAt. Oversized batches are
	// split across transactions, so a failure part way through can leave
	// earlier chunks committed; callers own compensation via
	// DeleteChunksByDocument.
	InsertChunks(ctx context.Context, chunks []*core.DocumentChunk) error

	// GetChunksByDocument returns a document's chunks ordered by ChunkIndex.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.DocumentChunk, error)

	// UpdateChunks rewrites existing chunk rows.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks []*core.DocumentChunk) error

	// CountChunks returns the number of chunk rows for a document.
	CountChunks(ctx context.Context, documentID core.ID) (int, error)

	// DeleteChunksByDocument removes every chunk row for a document.
	// Deleting a document with no chunks is not an error.
	DeleteChunksByDocument(ctx context.Context, documentID core.ID) error

	// FindSimilarChunks finds chunks similar to the given vector among
	// documents that have reached the done state. Returns chunks with
	// similarity >= minSimilarity, up to limit results, ordered by score
	// (highest first).
	FindSimilarChunks(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)
}

// JobRepository provides operations for managing ingestion jobs.
type JobRepository interface {
	Repository

	// CreateJob stores a new job for a document. Assigns Id from sequence
	// and sets CreatedAt/UpdatedAt. A document holds at most one job;
	// creating a second returns ErrDuplicateKey.
	CreateJob(ctx context.Context, job *core.IngestionJob) (*core.IngestionJob, error)

	// GetJobByDocument retrieves the job for a document.
	// Returns ErrNotFound if no job exists.
	GetJobByDocument(ctx context.Context, documentID core.ID) (*core.IngestionJob, error)

	// UpdateJob rewrites an existing job, bumping UpdatedAt.
	// Returns ErrNotFound if the job doesn't exist.
	UpdateJob(ctx context.Context, job *core.IngestionJob) (*core.IngestionJob, error)
}

// MemoryRepository provides operations for managing derived memories.
type MemoryRepository interface {
	Repository

	// CreateMemory stores a new memory and indexes it by source document.
	// Assigns Id from sequence and sets CreatedAt. A source document holds
	// at most one auto-summary memory; creating a second returns
	// ErrDuplicateKey.
	CreateMemory(ctx context.Context, memory *core.Memory) (*core.Memory, error)

	// GetMemoryBySourceDocument retrieves the memory derived from a document.
	// Returns ErrNotFound if no memory exists.
	GetMemoryBySourceDocument(ctx context.Context, documentID core.ID) (*core.Memory, error)

	// DeleteMemoryBySourceDocument removes the memory derived from a
	// document, if any. Absence is not an error.
	DeleteMemoryBySourceDocument(ctx context.Context, documentID core.ID) error
}
