// Package ai defines the embedding and summarization interfaces consumed by
// the ingestion pipeline, together with their configuration. The openai
// subpackage implements them against OpenAI-compatible APIs; the mock
// subpackage provides deterministic test doubles.
package ai
