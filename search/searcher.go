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

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guilhermexp/recall/ai"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

const (
	defaultLimit         = 10
	defaultMinSimilarity = 0.0
)

// ErrEmptyQuery indicates a blank search query.
var ErrEmptyQuery = errors.New("empty search query")

// Result is one search hit: a chunk, its similarity score, and the document
// it belongs to.
type Result struct {
	Chunk    *core.DocumentChunk
	Document *core.Document
	Score    float32
}

// Options tune a search call. The zero value uses defaults.
type Options struct {
	// Limit caps the number of results. Zero means the default of 10.
	Limit int
	// MinSimilarity filters out hits scoring below the threshold.
	MinSimilarity float32
}

// Searcher answers similarity queries over ingested documents. Only chunks
// of documents that finished ingestion are searched.
type Searcher struct {
	chunks   storage.ChunkRepository
	docs     storage.DocumentRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewSearcher creates a searcher over the given repositories.
func NewSearcher(chunks storage.ChunkRepository, docs storage.DocumentRepository, embedder ai.Embedder) *Searcher {
	return &Searcher{
		chunks:   chunks,
		docs:     docs,
		embedder: embedder,
		logger:   slog.Default().With("component", "search"),
	}
}

// Search embeds the query and returns the most similar chunks with their
// documents, ordered by score descending.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	minSim := opts.MinSimilarity
	if minSim < 0 {
		minSim = defaultMinSimilarity
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := s.chunks.FindSimilarChunks(ctx, vector, minSim, limit)
	if err != nil {
		return nil, err
	}

	// Most hits cluster in few documents; load each document once.
	docCache := make(map[core.ID]*core.Document)
	results := make([]*Result, 0, len(matches))
	for _, match := range matches {
		doc, ok := docCache[match.Chunk.DocumentID]
		if !ok {
			doc, err = s.docs.GetDocument(ctx, match.Chunk.DocumentID)
			if err != nil {
				return nil, err
			}
			docCache[match.Chunk.DocumentID] = doc
		}
		results = append(results, &Result{
			Chunk:    match.Chunk,
			Document: doc,
			Score:    match.Score,
		})
	}

	s.logger.Debug("search completed", "query_len", len(query), "results", len(results))
	return results, nil
}
