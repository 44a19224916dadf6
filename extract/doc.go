// Package extract converts submitted sources into plain text for chunking.
// Inline text passes through unchanged; URLs are fetched over HTTP and
// dispatched by content type, with HTML stripped down to readable text.
package extract
