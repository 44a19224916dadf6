// Package mock provides deterministic in-process implementations of the ai
// interfaces for tests. Embeddings are derived from a hash of the input text,
// so the same text always maps to the same vector.
package mock
