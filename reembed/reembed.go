package reembed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guilhermexp/recall/ai"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// Stats summarizes one re-embedding run.
type Stats struct {
	DocumentsScanned int
	DocumentsUpdated int
	ChunksUpdated    int
	DocumentsSkipped int
}

// Reembedder rewrites chunk embeddings with the current embedding model.
// It is used after a model change: documents whose chunks already carry the
// current model are skipped, everything else is re-embedded in place.
type Reembedder struct {
	docs     storage.DocumentRepository
	chunks   storage.ChunkRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewReembedder creates a re-embedder over the given repositories.
func NewReembedder(docs storage.DocumentRepository, chunks storage.ChunkRepository, embedder ai.Embedder) *Reembedder {
	return &Reembedder{
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
		logger:   slog.Default().With("component", "reembed"),
	}
}

// Run re-embeds the chunks of every finished document whose embeddings were
// produced by a different model. Document content and chunk boundaries are
// untouched; only Embedding and EmbeddingModel change.
func (r *Reembedder) Run(ctx context.Context) (*Stats, error) {
	model := r.embedder.Model()
	stats := &Stats{}

	docs, err := r.docs.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if doc.Status != core.StatusDone {
			stats.DocumentsSkipped++
			continue
		}
		stats.DocumentsScanned++

		updated, n, err := r.reembedDocument(ctx, doc.Id, model)
		if err != nil {
			return stats, fmt.Errorf("re-embedding document %d: %w", doc.Id, err)
		}
		if updated {
			stats.DocumentsUpdated++
			stats.ChunksUpdated += n
		}
	}

	r.logger.Info("re-embedding finished",
		"model", model,
		"documents_updated", stats.DocumentsUpdated,
		"chunks_updated", stats.ChunksUpdated)
	return stats, nil
}

func (r *Reembedder) reembedDocument(ctx context.Context, docID core.ID, model string) (bool, int, error) {
	chunks, err := r.chunks.GetChunksByDocument(ctx, docID)
	if err != nil {
		return false, 0, err
	}
	if len(chunks) == 0 {
		return false, 0, nil
	}

	current := true
	for _, chunk := range chunks {
		if chunk.EmbeddingModel != model {
			current = false
			break
		}
	}
	if current {
		return false, 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, 3, func() error {
		var embErr error
		vectors, embErr = r.embedder.EmbedTexts(ctx, texts)
		return embErr
	})
	if err != nil {
		return false, 0, err
	}
	if len(vectors) != len(chunks) {
		return false, 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, chunk := range chunks {
		chunk.Embedding = vectors[i]
		chunk.EmbeddingModel = model
	}

	if err := r.chunks.UpdateChunks(ctx, chunks); err != nil {
		return false, 0, err
	}

	r.logger.Debug("document re-embedded", "document_id", docID, "chunks", len(chunks))
	return true, len(chunks), nil
}
