// Copyright 2025 The Recall Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// ProcessedChunk is one fully processed piece of a document, ready to be
// persisted: text, position, and embedding.
type ProcessedChunk struct {
	Text       string
	CharStart  int
	CharEnd    int
	TokenCount int
	Embedding  []float32
}

// ProcessedDocument is the complete output of the processing stages for one
// document, handed to the orchestrator for the final commit.
type ProcessedDocument struct {
	DocumentID      core.ID
	Content         string
	Title           string
	Summary         string
	SummaryTags     []string
	Metadata        map[string]string
	PreviewImageURL string
	EmbeddingModel  string
	Chunks          []ProcessedChunk
}

// Orchestrator owns the commit step of ingestion. Chunk rows are written
// first; the document content and done status are then published together
// with the job's completed status in a single transaction, so readers either
// see the finished document or nothing new. If anything fails after chunks
// were written, they are rolled back by a compensating delete.
type Orchestrator struct {
	chunks   storage.ChunkRepository
	memories storage.MemoryRepository
	sm       *StateMachine
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator for the commit step.
func NewOrchestrator(chunks storage.ChunkRepository, memories storage.MemoryRepository, sm *StateMachine) *Orchestrator {
	return &Orchestrator{
		chunks:   chunks,
		memories: memories,
		sm:       sm,
		logger:   slog.Default().With("component", "orchestrator"),
	}
}

// CommitProcessedDocument validates and persists a processed document. The
// document must currently be in the indexing status.
//
// On any validation or storage failure the document is moved to failed, any
// chunks already written are deleted, and the causing error is returned. The
// derived summary memory is written best-effort after the commit; its
// failure does not affect the document's done status.
func (o *Orchestrator) CommitProcessedDocument(ctx context.Context, pd *ProcessedDocument) error {
	if err := validateProcessed(pd); err != nil {
		return o.failWith(ctx, pd.DocumentID, err)
	}

	rows := make([]*core.DocumentChunk, len(pd.Chunks))
	for i, pc := range pd.Chunks {
		rows[i] = &core.DocumentChunk{
			DocumentID:     pd.DocumentID,
			Content:        pc.Text,
			ChunkIndex:     i,
			CharStart:      pc.CharStart,
			CharEnd:        pc.CharEnd,
			Embedding:      pc.Embedding,
			EmbeddingModel: pd.EmbeddingModel,
			TokenCount:     pc.TokenCount,
		}
	}

	if err := o.chunks.InsertChunks(ctx, rows); err != nil {
		return o.failWith(ctx, pd.DocumentID, fmt.Errorf("inserting chunks: %w", err))
	}

	var tenantID, userID string
	err := o.sm.AdvanceWith(ctx, pd.DocumentID, core.StatusDone, func(doc *core.Document, _ *core.IngestionJob) error {
		doc.Content = pd.Content
		if doc.Title == "" {
			doc.Title = pd.Title
		}
		doc.Summary = pd.Summary
		doc.Tags = mergeTags(doc.Tags, pd.SummaryTags)
		if doc.PreviewImageURL == "" {
			doc.PreviewImageURL = pd.PreviewImageURL
		}
		if len(pd.Metadata) > 0 {
			if doc.Metadata == nil {
				doc.Metadata = make(map[string]string, len(pd.Metadata))
			}
			for k, v := range pd.Metadata {
				doc.Metadata[k] = v
			}
		}
		tenantID = doc.TenantID
		userID = doc.UserID
		return nil
	})
	if err != nil {
		return o.failWith(ctx, pd.DocumentID, fmt.Errorf("publishing document: %w", err))
	}

	o.logger.Info("document committed", "document_id", pd.DocumentID, "chunks", len(rows))

	o.writeSummaryMemory(ctx, pd, tenantID, userID)
	return nil
}

// failWith fails the document for cause and returns cause, joined with any
// rollback error so an incomplete rollback stays visible to the caller.
func (o *Orchestrator) failWith(ctx context.Context, documentID core.ID, cause error) error {
	if failErr := o.sm.Fail(ctx, documentID, cause); failErr != nil {
		return errors.Join(cause, failErr)
	}
	return cause
}

// writeSummaryMemory records the auto-summary memory for a committed
// document. Failures are logged and swallowed.
func (o *Orchestrator) writeSummaryMemory(ctx context.Context, pd *ProcessedDocument, tenantID, userID string) {
	if pd.Summary == "" {
		return
	}

	_, err := o.memories.CreateMemory(ctx, &core.Memory{
		SourceDocumentID: pd.DocumentID,
		TenantID:         tenantID,
		UserID:           userID,
		Content:          pd.Summary,
		Type:             core.MemoryTypeAutoSummary,
		Tags:             pd.SummaryTags,
	})
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		o.logger.Warn("failed to write summary memory", "document_id", pd.DocumentID, "err", err)
	}
}

func validateProcessed(pd *ProcessedDocument) error {
	if len(pd.Chunks) == 0 {
		return ErrNoChunks
	}
	if pd.EmbeddingModel == "" {
		return fmt.Errorf("%w: no model recorded", ErrEmbeddingMissing)
	}

	dim := len(pd.Chunks[0].Embedding)
	for i, pc := range pd.Chunks {
		if pc.Text == "" || pc.CharEnd <= pc.CharStart {
			return fmt.Errorf("%w: chunk %d range [%d,%d)", ErrChunkInvalid, i, pc.CharStart, pc.CharEnd)
		}
		if len(pc.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d", ErrEmbeddingMissing, i)
		}
		if len(pc.Embedding) != dim {
			return fmt.Errorf("%w: chunk %d has %d dims, expected %d", ErrDimensionMismatch, i, len(pc.Embedding), dim)
		}
	}
	return nil
}

func mergeTags(existing, extra []string) []string {
	out := existing
	for _, tag := range extra {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
