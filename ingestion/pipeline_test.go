package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermexp/recall/ai"
	"github.com/guilhermexp/recall/ai/mock"
	"github.com/guilhermexp/recall/chunker"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/extract"
	"github.com/guilhermexp/recall/storage"
	"github.com/guilhermexp/recall/storage/badger"
)

const sampleText = `Badger is an embeddable key-value store written in Go.
It is the underlying database for Dgraph and optimized for SSDs.
Transactions in Badger use serializable snapshot isolation.
Keys are kept in an LSM tree while values live in a value log.
Compaction merges levels of the tree in the background.
Iterators stream keys in sorted order over a consistent snapshot.`

func newTestPipeline(t *testing.T, stores *badger.Stores, provider *mock.MockProvider) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(PipelineConfig{
		Documents:  stores.Documents,
		Chunks:     stores.Chunks,
		Jobs:       stores.Jobs,
		Memories:   stores.Memories,
		Extractor:  extract.NewWebExtractor(),
		Chunker:    chunker.New(chunker.WithChunkSize(120), chunker.WithChunkOverlap(20)),
		Embedder:   provider.MockEmbedder,
		Summarizer: provider.MockSummarizer,
		Workers:    2,
	})
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline
}

func TestPipelineIngestsText(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	pipeline := newTestPipeline(t, stores, provider)
	observer := NewObserver(stores.Documents, stores.Jobs)
	ctx := context.Background()

	result, err := pipeline.Submit(ctx, SubmitRequest{
		TenantID:      "acme",
		Title:         "Badger notes",
		Content:       sampleText,
		ContainerTags: []string{"notes"},
	})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	report, err := observer.WaitForTerminal(waitCtx, result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, core.StatusDone, report.Status)
	assert.Equal(t, core.JobStatusCompleted, report.JobStatus)
	assert.Empty(t, report.ErrorMessage)

	doc, err := stores.Documents.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(sampleText), doc.Content)
	assert.Equal(t, "Badger notes", doc.Title)
	assert.NotEmpty(t, doc.Summary)

	chunks, err := stores.Chunks.GetChunksByDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	prevStart := -1
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex, "chunk indexes must be contiguous from zero")
		assert.Greater(t, chunk.CharEnd, chunk.CharStart)
		assert.LessOrEqual(t, chunk.CharEnd, len(doc.Content))
		assert.Greater(t, chunk.CharStart, prevStart, "chunk starts must strictly increase")
		prevStart = chunk.CharStart
		assert.NotEmpty(t, chunk.Embedding)
		assert.Equal(t, mock.DefaultModel, chunk.EmbeddingModel)
	}

	memory, err := stores.Memories.GetMemoryBySourceDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, doc.Summary, memory.Content)
	assert.Equal(t, core.MemoryTypeAutoSummary, memory.Type)
}

func TestPipelineRejectsInvalidSubmissions(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	pipeline := newTestPipeline(t, stores, provider)
	ctx := context.Background()

	_, err := pipeline.Submit(ctx, SubmitRequest{Content: "no tenant"})
	assert.ErrorIs(t, err, core.ErrInvalidSubmission)

	_, err = pipeline.Submit(ctx, SubmitRequest{TenantID: "acme"})
	assert.ErrorIs(t, err, core.ErrEmptyContent)

	_, err = pipeline.Submit(ctx, SubmitRequest{TenantID: "acme", Content: "both", URL: "https://example.com"})
	assert.ErrorIs(t, err, core.ErrConflictingSource)

	// Rejected submissions leave no rows behind.
	docs, err := stores.Documents.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPipelineDeduplicatesResubmission(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	pipeline := newTestPipeline(t, stores, provider)
	observer := NewObserver(stores.Documents, stores.Jobs)
	ctx := context.Background()

	first, err := pipeline.Submit(ctx, SubmitRequest{
		TenantID:      "acme",
		Content:       sampleText,
		ContainerTags: []string{"notes"},
	})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = observer.WaitForTerminal(waitCtx, first.DocumentID)
	require.NoError(t, err)

	second, err := pipeline.Submit(ctx, SubmitRequest{
		TenantID:      "acme",
		Content:       "  " + sampleText + "\n",
		ContainerTags: []string{"work"},
	})
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.DocumentID, second.DocumentID)

	doc, err := stores.Documents.GetDocument(ctx, first.DocumentID)
	require.NoError(t, err)
	assert.Contains(t, doc.ContainerTags, "notes")
	assert.Contains(t, doc.ContainerTags, "work")

	docs, err := stores.Documents.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "duplicate submission must not create a second document")

	// Same content under a different tenant is a fresh document.
	other, err := pipeline.Submit(ctx, SubmitRequest{TenantID: "globex", Content: sampleText})
	require.NoError(t, err)
	assert.False(t, other.Duplicate)
	assert.NotEqual(t, first.DocumentID, other.DocumentID)
}

func TestPipelineEmbedderFailureFailsDocument(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	provider.MockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	pipeline := newTestPipeline(t, stores, provider)
	observer := NewObserver(stores.Documents, stores.Jobs)
	ctx := context.Background()

	result, err := pipeline.Submit(ctx, SubmitRequest{TenantID: "acme", Content: sampleText})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	report, err := observer.WaitForTerminal(waitCtx, result.DocumentID)
	require.NoError(t, err)

	assert.Equal(t, core.StatusFailed, report.Status)
	assert.Equal(t, core.JobStatusFailed, report.JobStatus)
	assert.Contains(t, report.ErrorMessage, "embedding service down")
	assert.False(t, report.RollbackIncomplete)

	count, err := stores.Chunks.CountChunks(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Zero(t, count)

	doc, err := stores.Documents.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, doc.Content, "failed document must not expose content")
}

func TestPipelineSummarizerFailureStillCompletes(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	provider.MockSummarizer.SummarizeFunc = func(ctx context.Context, text string) (*ai.Summary, error) {
		return nil, errors.New("summarizer down")
	}
	pipeline := newTestPipeline(t, stores, provider)
	observer := NewObserver(stores.Documents, stores.Jobs)
	ctx := context.Background()

	result, err := pipeline.Submit(ctx, SubmitRequest{TenantID: "acme", Content: sampleText})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	report, err := observer.WaitForTerminal(waitCtx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusDone, report.Status)

	doc, err := stores.Documents.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, doc.Summary)
}

// brokenCreateJob fails every job creation.
type brokenCreateJob struct {
	storage.JobRepository
}

func (b *brokenCreateJob) CreateJob(ctx context.Context, job *core.IngestionJob) (*core.IngestionJob, error) {
	return nil, errors.New("job table unavailable")
}

func TestPipelineJobFailureLeavesNoDocument(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	broken, err := NewPipeline(PipelineConfig{
		Documents:  stores.Documents,
		Chunks:     stores.Chunks,
		Jobs:       &brokenCreateJob{stores.Jobs},
		Memories:   stores.Memories,
		Extractor:  extract.NewWebExtractor(),
		Chunker:    chunker.New(chunker.WithChunkSize(120), chunker.WithChunkOverlap(20)),
		Embedder:   provider.MockEmbedder,
		Summarizer: provider.MockSummarizer,
		Workers:    2,
	})
	require.NoError(t, err)
	t.Cleanup(broken.Release)
	ctx := context.Background()

	_, err = broken.Submit(ctx, SubmitRequest{TenantID: "acme", Content: sampleText})
	require.Error(t, err)

	docs, err := stores.Documents.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs, "a failed submission must not leave a jobless document behind")

	// A healthy retry of the same content starts fresh instead of hitting
	// a stale content-key entry.
	pipeline := newTestPipeline(t, stores, provider)
	observer := NewObserver(stores.Documents, stores.Jobs)

	result, err := pipeline.Submit(ctx, SubmitRequest{TenantID: "acme", Content: sampleText})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	report, err := observer.WaitForTerminal(waitCtx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusDone, report.Status)
}

func TestPipelineIsolatesConcurrentDocuments(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	pipeline := newTestPipeline(t, stores, provider)
	observer := NewObserver(stores.Documents, stores.Jobs)
	ctx := context.Background()

	const docCount = 5
	contents := make([]string, docCount)
	for i := range contents {
		contents[i] = fmt.Sprintf("Document number %d.\n%s\nUnique marker %d.", i, sampleText, i)
	}

	results := make([]*SubmitResult, docCount)
	errs := make([]error, docCount)
	var wg sync.WaitGroup
	for i := 0; i < docCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = pipeline.Submit(ctx, SubmitRequest{
				TenantID: "acme",
				Content:  contents[i],
			})
		}(i)
	}
	wg.Wait()

	seen := make(map[core.ID]bool, docCount)
	for i := 0; i < docCount; i++ {
		require.NoError(t, errs[i])
		require.False(t, results[i].Duplicate)
		assert.False(t, seen[results[i].DocumentID], "distinct contents must yield distinct documents")
		seen[results[i].DocumentID] = true
	}

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for i := 0; i < docCount; i++ {
		report, err := observer.WaitForTerminal(waitCtx, results[i].DocumentID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusDone, report.Status)
	}

	for i := 0; i < docCount; i++ {
		doc, err := stores.Documents.GetDocument(ctx, results[i].DocumentID)
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSpace(contents[i]), doc.Content)

		chunks, err := stores.Chunks.GetChunksByDocument(ctx, results[i].DocumentID)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		for j, chunk := range chunks {
			assert.Equal(t, results[i].DocumentID, chunk.DocumentID)
			assert.Equal(t, j, chunk.ChunkIndex)
			assert.Contains(t, doc.Content, chunk.Content,
				"chunk text must come from its own document")
		}
	}
}

func TestPipelineStatusNeverRegresses(t *testing.T) {
	stores := setupStores(t)
	provider := mock.NewMockProvider()
	pipeline := newTestPipeline(t, stores, provider)
	observer := NewObserver(stores.Documents, stores.Jobs)
	ctx := context.Background()

	result, err := pipeline.Submit(ctx, SubmitRequest{TenantID: "acme", Content: sampleText})
	require.NoError(t, err)

	deadline := time.Now().Add(10 * time.Second)
	var observed []core.Status
	for time.Now().Before(deadline) {
		report, err := observer.GetStatus(ctx, result.DocumentID)
		require.NoError(t, err)
		observed = append(observed, report.Status)
		if report.Terminal() {
			break
		}
		time.Sleep(time.Millisecond)
	}

	require.NotEmpty(t, observed)
	for i := 1; i < len(observed); i++ {
		assert.GreaterOrEqual(t, observed[i].Cmp(observed[i-1]), 0,
			"observed %s after %s", observed[i], observed[i-1])
	}
	assert.Equal(t, core.StatusDone, observed[len(observed)-1])
}
