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

package extract

import "context"

// Result holds the outcome of content extraction: the plain text to be
// chunked plus any metadata recovered from the source.
type Result struct {
	// Text is the extracted plain text.
	Text string

	// Title is the document title, if one could be determined.
	Title string

	// PreviewImageURL is a representative image for the source, if any.
	PreviewImageURL string

	// Metadata carries source-specific key/value pairs (content type,
	// final URL after redirects, and similar).
	Metadata map[string]string
}

// Extractor turns raw submitted content into plain text.
type Extractor interface {
	Extract(ctx context.Context, input Input) (*Result, error)
}

// Input describes what to extract. Exactly one of Content or URL is set,
// mirroring the submission rules.
type Input struct {
	// Content is inline text provided at submission.
	Content string

	// URL is a remote source to fetch and extract.
	URL string
}
