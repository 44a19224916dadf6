package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermexp/recall/core"
)

func microNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func TestDocumentRoundTrip(t *testing.T) {
	now := microNow()
	doc := &core.Document{
		Id:              42,
		TenantID:        "acme",
		UserID:          "u-7",
		CustomID:        "ext-123",
		Title:           "Intro to Go",
		URL:             "https://example.com/go",
		Content:         "Go is a statically typed language.",
		Summary:         "An introduction to Go.",
		Tags:            []string{"go", "programming"},
		Metadata:        map[string]string{"content_type": "text/html"},
		PreviewImageURL: "https://example.com/og.png",
		Status:          core.StatusDone,
		Type:            core.DocumentTypeURL,
		ContainerTags:   []string{"docs"},
		ContentHash:     "abcd1234",
		CreatedAt:       now,
		UpdatedAt:       now.Add(time.Second),
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
	assert.Equal(t, time.UTC, decoded.CreatedAt.Location(), "stored timestamps stay in UTC")
	assert.Equal(t, time.UTC, decoded.UpdatedAt.Location())
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := &core.DocumentChunk{
		Id:             7,
		DocumentID:     42,
		Content:        "Go is a statically typed language.",
		ChunkIndex:     3,
		CharStart:      120,
		CharEnd:        154,
		Embedding:      []float32{0.25, -0.5, 0.125},
		EmbeddingModel: "embeddinggemma",
		TokenCount:     9,
		CreatedAt:      microNow(),
	}

	decoded, err := UnmarshalChunk(MarshalChunk(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestJobRoundTrip(t *testing.T) {
	now := microNow()

	t.Run("running job has zero CompletedAt", func(t *testing.T) {
		job := &core.IngestionJob{
			Id:         5,
			DocumentID: 42,
			Status:     core.JobStatusEmbedding,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		decoded, err := UnmarshalJob(MarshalJob(job))
		require.NoError(t, err)
		assert.Equal(t, job, decoded)
		assert.True(t, decoded.CompletedAt.IsZero())
	})

	t.Run("failed job keeps error and rollback flag", func(t *testing.T) {
		job := &core.IngestionJob{
			Id:                 5,
			DocumentID:         42,
			Status:             core.JobStatusFailed,
			ErrorMessage:       "embedder unavailable",
			RollbackIncomplete: true,
			CreatedAt:          now,
			UpdatedAt:          now.Add(time.Second),
			CompletedAt:        now.Add(time.Second),
		}

		decoded, err := UnmarshalJob(MarshalJob(job))
		require.NoError(t, err)
		assert.Equal(t, job, decoded)
	})
}

func TestMemoryRoundTrip(t *testing.T) {
	memory := &core.Memory{
		Id:               9,
		SourceDocumentID: 42,
		TenantID:         "acme",
		UserID:           "u-7",
		Content:          "An introduction to Go.",
		Type:             core.MemoryTypeAutoSummary,
		Tags:             []string{"go"},
		CreatedAt:        microNow(),
	}

	decoded, err := UnmarshalMemory(MarshalMemory(memory))
	require.NoError(t, err)
	assert.Equal(t, memory, decoded)
}

func TestUnmarshalDocumentCorruptData(t *testing.T) {
	_, err := UnmarshalDocument([]byte{0xff})
	assert.Error(t, err)
}
