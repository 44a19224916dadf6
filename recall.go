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

// Package recall is a knowledge-base ingestion library. Documents submitted
// as inline text or URLs are fetched, chunked, embedded and stored together
// with an auto-generated summary memory, then served back through status
// queries and vector similarity search.
package recall

import (
	"context"
	"errors"
	"fmt"

	"github.com/guilhermexp/recall/ai"
	openaiprovider "github.com/guilhermexp/recall/ai/openai"
	"github.com/guilhermexp/recall/chunker"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/extract"
	"github.com/guilhermexp/recall/ingestion"
	"github.com/guilhermexp/recall/reembed"
	"github.com/guilhermexp/recall/search"
	badgerstore "github.com/guilhermexp/recall/storage/badger"
)

// Database is the top-level handle combining storage, the ingestion
// pipeline, and query surfaces. It is safe for concurrent use.
type Database struct {
	stores   *badgerstore.Stores
	provider ai.Provider
	pipeline *ingestion.Pipeline
	observer *ingestion.Observer
	searcher *search.Searcher
}

type options struct {
	path         string
	inMemory     bool
	provider     ai.Provider
	aiOpts       []ai.ConfigOption
	workers      int
	chunkSize    int
	chunkOverlap int
	tokenCounter chunker.TokenCounter
}

// Option configures Open.
type Option func(*options)

// WithInMemory opens an ephemeral database that lives in process memory.
func WithInMemory() Option {
	return func(o *options) { o.inMemory = true }
}

// WithProvider supplies the AI provider directly, bypassing the default
// OpenAI-compatible wiring. Tests use this with the mock provider.
func WithProvider(p ai.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithAIOptions forwards options to the default AI provider configuration.
// Ignored when WithProvider is used.
func WithAIOptions(opts ...ai.ConfigOption) Option {
	return func(o *options) { o.aiOpts = append(o.aiOpts, opts...) }
}

// WithWorkers sets the background worker count for ingestion.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithChunking sets the chunk size and overlap in characters.
func WithChunking(size, overlap int) Option {
	return func(o *options) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithTokenCounter sets the counter used to record chunk token counts.
func WithTokenCounter(counter chunker.TokenCounter) Option {
	return func(o *options) { o.tokenCounter = counter }
}

// Open creates or opens a database at path and wires the full pipeline.
func Open(path string, opts ...Option) (*Database, error) {
	o := &options{path: path}
	for _, opt := range opts {
		opt(o)
	}

	stores, err := badgerstore.OpenStores(o.path, o.inMemory)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	provider := o.provider
	if provider == nil {
		cfg := ai.NewConfig(o.aiOpts...)
		provider, err = openaiprovider.NewProvider(cfg)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
	}

	chunkOpts := []chunker.Option{}
	if o.chunkSize > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(o.chunkSize))
	}
	if o.chunkOverlap > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkOverlap(o.chunkOverlap))
	}
	if o.tokenCounter != nil {
		chunkOpts = append(chunkOpts, chunker.WithTokenCounter(o.tokenCounter))
	}

	pipeline, err := ingestion.NewPipeline(ingestion.PipelineConfig{
		Documents:  stores.Documents,
		Chunks:     stores.Chunks,
		Jobs:       stores.Jobs,
		Memories:   stores.Memories,
		Extractor:  extract.NewWebExtractor(),
		Chunker:    chunker.New(chunkOpts...),
		Embedder:   provider.Embedder(),
		Summarizer: provider.Summarizer(),
		Workers:    o.workers,
	})
	if err != nil {
		provider.Close()
		stores.Close()
		return nil, err
	}

	return &Database{
		stores:   stores,
		provider: provider,
		pipeline: pipeline,
		observer: ingestion.NewObserver(stores.Documents, stores.Jobs),
		searcher: search.NewSearcher(stores.Chunks, stores.Documents, provider.Embedder()),
	}, nil
}

// Submit queues a document for ingestion. See ingestion.Pipeline.Submit.
func (db *Database) Submit(ctx context.Context, req ingestion.SubmitRequest) (*ingestion.SubmitResult, error) {
	return db.pipeline.Submit(ctx, req)
}

// Status returns the processing state of a document.
func (db *Database) Status(ctx context.Context, documentID core.ID) (*ingestion.StatusReport, error) {
	return db.observer.GetStatus(ctx, documentID)
}

// WaitForTerminal blocks until a document finishes processing, successfully
// or not, or the context expires.
func (db *Database) WaitForTerminal(ctx context.Context, documentID core.ID) (*ingestion.StatusReport, error) {
	return db.observer.WaitForTerminal(ctx, documentID)
}

// Document returns a document by ID.
func (db *Database) Document(ctx context.Context, documentID core.ID) (*core.Document, error) {
	return db.stores.Documents.GetDocument(ctx, documentID)
}

// Documents lists all stored documents.
func (db *Database) Documents(ctx context.Context) ([]*core.Document, error) {
	return db.stores.Documents.ListDocuments(ctx)
}

// Chunks returns a document's chunks in index order.
func (db *Database) Chunks(ctx context.Context, documentID core.ID) ([]*core.DocumentChunk, error) {
	return db.stores.Chunks.GetChunksByDocument(ctx, documentID)
}

// Memory returns the auto-summary memory derived from a document.
func (db *Database) Memory(ctx context.Context, documentID core.ID) (*core.Memory, error) {
	return db.stores.Memories.GetMemoryBySourceDocument(ctx, documentID)
}

// Delete removes a document with its chunks, job and memory.
func (db *Database) Delete(ctx context.Context, documentID core.ID) error {
	return db.stores.Documents.DeleteDocument(ctx, documentID)
}

// Search runs a vector similarity query over finished documents.
func (db *Database) Search(ctx context.Context, query string, opts search.Options) ([]*search.Result, error) {
	return db.searcher.Search(ctx, query, opts)
}

// Reembed rewrites chunk embeddings with the current embedding model.
func (db *Database) Reembed(ctx context.Context) (*reembed.Stats, error) {
	return reembed.NewReembedder(db.stores.Documents, db.stores.Chunks, db.provider.Embedder()).Run(ctx)
}

// Wait blocks until all in-flight submissions reach a terminal state.
func (db *Database) Wait() {
	db.pipeline.Wait()
}

// Close drains in-flight work and releases the pipeline, provider and
// storage. The database must not be used afterwards.
func (db *Database) Close() error {
	db.pipeline.Release()
	err := db.provider.Close()
	if closeErr := db.stores.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}
