// Package ingestion implements the document processing pipeline: submission
// with per-tenant deduplication, the status state machine, the background
// processing stages, and the transactional commit that publishes a finished
// document together with its chunks and derived summary memory.
package ingestion
