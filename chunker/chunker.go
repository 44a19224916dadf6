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

package chunker

import (
	"errors"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	defaultChunkSize    = 1200
	defaultChunkOverlap = 200
)

// ErrEmptyText indicates there was nothing to split.
var ErrEmptyText = errors.New("no text to chunk")

// Chunk is a contiguous piece of a source text with its position recorded
// as byte offsets into the original.
type Chunk struct {
	Text       string
	CharStart  int
	CharEnd    int
	TokenCount int
}

// TokenCounter reports how many model tokens a text occupies. A nil counter
// leaves TokenCount zero.
type TokenCounter func(text string) int

// Chunker splits text into overlapping pieces sized for embedding.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	countTokens  TokenCounter
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithChunkOverlap sets how many characters adjacent chunks share.
func WithChunkOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.chunkOverlap = overlap
		}
	}
}

// WithTokenCounter sets the token counter applied to each chunk.
func WithTokenCounter(counter TokenCounter) Option {
	return func(c *Chunker) {
		c.countTokens = counter
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chunkOverlap >= c.chunkSize {
		c.chunkOverlap = c.chunkSize / 4
	}
	return c
}

// Split divides text into chunks and resolves each chunk's position in the
// original. Offsets are strictly increasing in CharStart; because chunks
// overlap, a chunk's start may precede the previous chunk's end.
func (c *Chunker) Split(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.chunkSize),
		textsplitter.WithChunkOverlap(c.chunkOverlap),
	)

	pieces, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(pieces))
	searchFrom := 0
	for _, piece := range pieces {
		if piece == "" {
			continue
		}

		start, end := resolveWindow(text, searchFrom, piece)

		chunk := Chunk{
			Text:      piece,
			CharStart: start,
			CharEnd:   end,
		}
		if c.countTokens != nil {
			chunk.TokenCount = c.countTokens(piece)
		}
		chunks = append(chunks, chunk)

		// Advance past the non-overlapping head of this piece so the next
		// search cannot land on an earlier duplicate, while still allowing
		// the configured overlap to match.
		advance := len(piece) - c.chunkOverlap
		if advance < 1 {
			advance = 1
		}
		searchFrom = start + advance
		if searchFrom > len(text) {
			searchFrom = len(text)
		}
	}

	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	return chunks, nil
}

// resolveWindow locates piece in text at or after searchFrom and returns its
// half-open byte range. The splitter trims whitespace, so a piece may not
// appear verbatim past the cursor; the fallback window starts at the cursor
// and is clamped so 0 <= start < end <= len(text) always holds.
func resolveWindow(text string, searchFrom int, piece string) (start, end int) {
	start = strings.Index(text[searchFrom:], piece)
	if start < 0 {
		start = 0
	}
	start += searchFrom
	end = start + len(piece)
	if end > len(text) {
		end = len(text)
		start = end - len(piece)
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
