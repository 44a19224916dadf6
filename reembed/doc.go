// Package reembed rewrites stored chunk embeddings after an embedding model
// change, leaving document content and chunk boundaries intact.
package reembed
