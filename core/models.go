package core

import (
	"time"
)

// ID is a unique identifier for domain entities.
// IDs are allocated from database sequences.
type ID uint64

// DocumentType identifies the kind of source a document was created from.
type DocumentType string

const (
	// DocumentTypeText is a document created from raw text submitted inline.
	DocumentTypeText DocumentType = "text"
	// DocumentTypeURL is a document created by fetching and extracting a URL.
	DocumentTypeURL DocumentType = "url"
)

// MemoryTypeAutoSummary marks memories derived automatically from a
// document's generated summary during ingestion.
const MemoryTypeAutoSummary = "auto-summary"

// Document represents one ingested piece of content.
//
// Content and the chunk set are only final once Status == StatusDone;
// readers must not treat them as complete in any earlier state.
type Document struct {
	Id              ID
	TenantID        string // owning tenant/org scope, required
	UserID          string // optional submitting user
	CustomID        string // optional caller-supplied identifier
	Title           string
	URL             string // empty for inline text submissions
	Content         string // normalized text, set at commit time
	Summary         string
	Tags            []string
	Metadata        map[string]string
	PreviewImageURL string
	Status          Status
	Type            DocumentType
	ContainerTags   []string // grouping identifiers this document belongs to
	ContentHash     string   // blake2b hex of normalized URL or content, dedup key
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DocumentChunk is a contiguous substring of a document's normalized text,
// embedded independently for retrieval.
//
// Embedding and EmbeddingModel are set together or not at all; a chunk is
// never partially embedded.
type DocumentChunk struct {
	Id             ID
	DocumentID     ID
	Content        string
	ChunkIndex     int // 0-based position, no gaps per document
	CharStart      int // half-open range into the document's normalized text
	CharEnd        int
	Embedding      []float32
	EmbeddingModel string
	TokenCount     int
	CreatedAt      time.Time
}

// IngestionJob tracks a single processing attempt for a document.
// At most one job exists per document; it is terminal once completed or failed.
type IngestionJob struct {
	Id                 ID
	DocumentID         ID
	Status             JobStatus
	ErrorMessage       string
	RollbackIncomplete bool // failed job whose chunk rollback could not finish
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CompletedAt        time.Time // zero until the job reaches a terminal state
}

// Memory is a derived record produced from a successfully ingested document.
// For this pipeline the only type is MemoryTypeAutoSummary.
type Memory struct {
	Id               ID
	SourceDocumentID ID
	TenantID         string
	UserID           string
	Content          string
	Type             string
	Tags             []string
	CreatedAt        time.Time
}

// ChunkMatch is a chunk returned from vector similarity search.
type ChunkMatch struct {
	Chunk *DocumentChunk
	Score float32
}
