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

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	defaultFetchTimeout = 30 * time.Second

	// maxFetchBytes caps how much of a remote resource is read.
	maxFetchBytes = 8 << 20

	userAgent = "recall/1.0"
)

// WebExtractor fetches remote URLs and extracts text from the response. It
// also handles inline content submissions, which pass through untouched.
type WebExtractor struct {
	client *http.Client
	logger *slog.Logger
}

// WebExtractorOption configures a WebExtractor.
type WebExtractorOption func(*WebExtractor)

// WithHTTPClient overrides the HTTP client used for fetching.
func WithHTTPClient(client *http.Client) WebExtractorOption {
	return func(w *WebExtractor) {
		w.client = client
	}
}

// NewWebExtractor creates an extractor for inline text and remote URLs.
func NewWebExtractor(opts ...WebExtractorOption) *WebExtractor {
	w := &WebExtractor{
		client: &http.Client{Timeout: defaultFetchTimeout},
		logger: slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Extract returns plain text for the given input. Inline content is trimmed
// and passed through; URLs are fetched and dispatched by content type.
func (w *WebExtractor) Extract(ctx context.Context, input Input) (*Result, error) {
	if input.URL == "" {
		text := strings.TrimSpace(input.Content)
		if text == "" {
			return nil, ErrEmptyResult
		}
		return &Result{Text: text}, nil
	}
	return w.fetchURL(ctx, input.URL)
}

func (w *WebExtractor) fetchURL(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	w.logger.Debug("fetching url", "url", url)
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch {
	case strings.Contains(mediaType, "html"):
		result, err := ExtractHTML(string(body))
		if err != nil {
			return nil, err
		}
		result.Metadata["source_url"] = resp.Request.URL.String()
		return result, nil

	case strings.HasPrefix(mediaType, "text/"), mediaType == "application/json":
		text := strings.TrimSpace(string(body))
		if text == "" {
			return nil, ErrEmptyResult
		}
		return &Result{
			Text: text,
			Metadata: map[string]string{
				"content_type": mediaType,
				"source_url":   resp.Request.URL.String(),
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, mediaType)
	}
}
