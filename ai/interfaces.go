package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. The returned slice contains embeddings in the same order as
	// the input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the embedding model in use. It is
	// recorded on every chunk row so stored vectors can be told apart
	// after a model change.
	Model() string
}

// Summarizer produces a short summary and topic tags for a document's text.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize generates a summary for the given text.
	// Returns an error if generation fails; callers treat summary
	// generation as best-effort.
	Summarize(ctx context.Context, text string) (*Summary, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Summarizer instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Summarizer returns the summary generation service.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	Close() error
}
