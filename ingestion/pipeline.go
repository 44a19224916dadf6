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
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/guilhermexp/recall/ai"
	"github.com/guilhermexp/recall/chunker"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/extract"
	"github.com/guilhermexp/recall/storage"
)

const defaultWorkers = 4

// SubmitRequest describes one submission to the pipeline. Exactly one of
// Content or URL must be set.
type SubmitRequest struct {
	TenantID      string
	UserID        string
	CustomID      string
	Title         string
	Content       string
	URL           string
	ContainerTags []string
	Metadata      map[string]string
}

// SubmitResult is the synchronous outcome of a submission. Processing
// continues in the background; the document starts in the queued status.
type SubmitResult struct {
	DocumentID core.ID
	// Duplicate is true when the content already existed for the tenant.
	// DocumentID then refers to the existing document and no new job runs.
	Duplicate bool
}

// Pipeline accepts submissions and processes them asynchronously through
// fetch, extract, chunk, embed and commit.
type Pipeline struct {
	docs       storage.DocumentRepository
	jobs       storage.JobRepository
	dedup      *DedupGuard
	sm         *StateMachine
	orch       *Orchestrator
	extractor  extract.Extractor
	chunker    *chunker.Chunker
	embedder   ai.Embedder
	summarizer ai.Summarizer

	pool   *ants.Pool
	wg     sync.WaitGroup
	logger *slog.Logger
}

// PipelineConfig bundles the pipeline's collaborators.
type PipelineConfig struct {
	Documents  storage.DocumentRepository
	Chunks     storage.ChunkRepository
	Jobs       storage.JobRepository
	Memories   storage.MemoryRepository
	Extractor  extract.Extractor
	Chunker    *chunker.Chunker
	Embedder   ai.Embedder
	Summarizer ai.Summarizer

	// Workers is the background worker count. Zero means the default.
	Workers int
}

// NewPipeline creates a pipeline with its own worker pool.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	sm := NewStateMachine(cfg.Documents, cfg.Chunks, cfg.Memories)

	return &Pipeline{
		docs:       cfg.Documents,
		jobs:       cfg.Jobs,
		dedup:      NewDedupGuard(cfg.Documents),
		sm:         sm,
		orch:       NewOrchestrator(cfg.Chunks, cfg.Memories, sm),
		extractor:  cfg.Extractor,
		chunker:    cfg.Chunker,
		embedder:   cfg.Embedder,
		summarizer: cfg.Summarizer,
		pool:       pool,
		logger:     slog.Default().With("component", "pipeline"),
	}, nil
}

// Submit validates a submission, creates the document and job rows in the
// queued state, and schedules background processing. Duplicate content
// returns the existing document without creating anything; its container
// tags are extended with any new ones from the request.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := core.ValidateSubmission(req.TenantID, req.Content, req.URL); err != nil {
		return nil, err
	}

	docType := core.DocumentTypeText
	contentHash := core.ContentHashFromText(req.Content)
	if req.URL != "" {
		docType = core.DocumentTypeURL
		contentHash = core.ContentHashFromURL(req.URL)
	}

	if existing, dup, err := p.dedup.CheckDuplicate(ctx, req.TenantID, contentHash); err != nil {
		return nil, err
	} else if dup {
		return p.resolveDuplicate(ctx, existing, req)
	}

	doc := &core.Document{
		TenantID:      req.TenantID,
		UserID:        req.UserID,
		CustomID:      req.CustomID,
		Title:         req.Title,
		URL:           req.URL,
		Metadata:      req.Metadata,
		Status:        core.StatusQueued,
		Type:          docType,
		ContainerTags: req.ContainerTags,
		ContentHash:   contentHash,
	}

	doc, err := p.docs.CreateDocument(ctx, doc)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a race against a concurrent submission of the same
			// content. The winner's document is the result.
			existing, findErr := p.docs.FindDocumentByContentKey(ctx, req.TenantID, contentHash)
			if findErr != nil {
				return nil, findErr
			}
			return p.resolveDuplicate(ctx, existing, req)
		}
		return nil, err
	}

	if _, err := p.jobs.CreateJob(ctx, &core.IngestionJob{
		DocumentID: doc.Id,
		Status:     core.JobStatusQueued,
	}); err != nil {
		// A document without a job can never reach a terminal state, and
		// its content key would shadow every retry of the same content.
		if delErr := p.docs.DeleteDocument(ctx, doc.Id); delErr != nil {
			p.logger.Error("failed to remove document after job creation failure",
				"document_id", doc.Id, "err", delErr)
		}
		return nil, fmt.Errorf("creating job: %w", err)
	}

	p.logger.Info("submission accepted", "document_id", doc.Id, "tenant_id", req.TenantID, "type", docType)

	docID := doc.Id
	p.wg.Add(1)
	submitErr := p.pool.Submit(func() {
		defer p.wg.Done()
		p.process(context.Background(), docID, req)
	})
	if submitErr != nil {
		// Pool is saturated or released; don't lose the work.
		go func() {
			defer p.wg.Done()
			p.process(context.Background(), docID, req)
		}()
	}

	return &SubmitResult{DocumentID: docID}, nil
}

func (p *Pipeline) resolveDuplicate(ctx context.Context, existing *core.Document, req SubmitRequest) (*SubmitResult, error) {
	if len(req.ContainerTags) > 0 {
		if err := p.docs.AddContainerTags(ctx, existing.Id, req.ContainerTags...); err != nil {
			return nil, err
		}
	}
	return &SubmitResult{DocumentID: existing.Id, Duplicate: true}, nil
}

// process runs the stages for one document. Any error fails the document
// with its chunks rolled back; process itself never returns one.
func (p *Pipeline) process(ctx context.Context, docID core.ID, req SubmitRequest) {
	if err := p.runStages(ctx, docID, req); err != nil {
		// The orchestrator fails the document itself on commit errors;
		// Fail is a no-op then.
		if failErr := p.sm.Fail(ctx, docID, err); failErr != nil {
			p.logger.Error("failed to mark document failed", "document_id", docID, "err", failErr)
		}
	}
}

func (p *Pipeline) runStages(ctx context.Context, docID core.ID, req SubmitRequest) error {
	if err := p.sm.Advance(ctx, docID, core.StatusFetching); err != nil {
		return err
	}

	extracted, err := p.extractor.Extract(ctx, extract.Input{Content: req.Content, URL: req.URL})
	if err != nil {
		return fmt.Errorf("extracting content: %w", err)
	}

	if err := p.sm.Advance(ctx, docID, core.StatusExtracting); err != nil {
		return err
	}

	if err := p.sm.Advance(ctx, docID, core.StatusChunking); err != nil {
		return err
	}

	pieces, err := p.chunker.Split(extracted.Text)
	if err != nil {
		return fmt.Errorf("chunking content: %w", err)
	}

	if err := p.sm.Advance(ctx, docID, core.StatusEmbedding); err != nil {
		return err
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return fmt.Errorf("%w: %d for %d chunks", ErrEmbeddingCountMismatch, len(vectors), len(pieces))
	}

	// The summary feeds the document and its memory but is not load-bearing;
	// a summarizer outage must not fail ingestion.
	var summary string
	var summaryTags []string
	if p.summarizer != nil {
		if s, sumErr := p.summarizer.Summarize(ctx, extracted.Text); sumErr != nil {
			p.logger.Warn("summary generation failed", "document_id", docID, "err", sumErr)
		} else {
			summary = s.Content
			summaryTags = s.Tags
		}
	}

	if err := p.sm.Advance(ctx, docID, core.StatusIndexing); err != nil {
		return err
	}

	pd := &ProcessedDocument{
		DocumentID:      docID,
		Content:         extracted.Text,
		Title:           extracted.Title,
		Summary:         summary,
		SummaryTags:     summaryTags,
		Metadata:        extracted.Metadata,
		PreviewImageURL: extracted.PreviewImageURL,
		EmbeddingModel:  p.embedder.Model(),
		Chunks:          make([]ProcessedChunk, len(pieces)),
	}
	for i, piece := range pieces {
		pd.Chunks[i] = ProcessedChunk{
			Text:       piece.Text,
			CharStart:  piece.CharStart,
			CharEnd:    piece.CharEnd,
			TokenCount: piece.TokenCount,
			Embedding:  vectors[i],
		}
	}

	return p.orch.CommitProcessedDocument(ctx, pd)
}

// Wait blocks until all in-flight submissions have reached a terminal state.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release waits for in-flight work and shuts down the worker pool. The
// pipeline accepts no submissions afterwards.
func (p *Pipeline) Release() {
	p.wg.Wait()
	p.pool.Release()
}
