// Package chunker splits extracted text into overlapping pieces sized for
// embedding, tracking each piece's byte offsets in the source text.
package chunker
