// Package storage defines the persistence interfaces for documents, chunks,
// ingestion jobs and derived memories, plus the serialization helpers shared
// by backends. The badger subpackage provides the BadgerDB implementation.
//
// Repositories are handed to consumers explicitly; there is no package-level
// client. The (TenantID, ContentHash) uniqueness that backs deduplication is
// enforced here, at the storage layer, so concurrent submissions of the same
// content cannot race past a check-then-act window.
package storage
