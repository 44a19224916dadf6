package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })
	return stores
}

func newQueuedDocument(t *testing.T, stores *Stores, tenantID, content string) *core.Document {
	t.Helper()
	ctx := context.Background()

	doc, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    tenantID,
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: core.ContentHashFromText(content),
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	_, err = stores.Jobs.CreateJob(ctx, &core.IngestionJob{
		DocumentID: doc.Id,
		Status:     core.JobStatusQueued,
	})
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	return doc
}

func TestDocumentCreateAndGet(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    "acme",
		Title:       "First",
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: core.ContentHashFromText("first document"),
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	if doc.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set")
	}

	got, err := stores.Documents.GetDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.Title != "First" || got.TenantID != "acme" {
		t.Fatalf("Unexpected document: %+v", got)
	}
	if got.Status != core.StatusQueued {
		t.Fatalf("Expected queued, got %s", got.Status)
	}
}

func TestDocumentGetNotFound(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.Documents.GetDocument(context.Background(), 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDocumentDuplicateContentKey(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	hash := core.ContentHashFromText("same content")
	first, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    "acme",
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: hash,
	})
	if err != nil {
		t.Fatalf("Failed to create first document: %v", err)
	}

	_, err = stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    "acme",
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: hash,
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same content under a different tenant is not a duplicate.
	other, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    "globex",
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: hash,
	})
	if err != nil {
		t.Fatalf("Expected cross-tenant create to succeed: %v", err)
	}
	if other.Id == first.Id {
		t.Fatal("Expected distinct documents per tenant")
	}
}

func TestFindDocumentByContentKey(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	hash := core.ContentHashFromText("findable")
	doc, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    "acme",
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: hash,
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	found, err := stores.Documents.FindDocumentByContentKey(ctx, "acme", hash)
	if err != nil {
		t.Fatalf("Failed to find document: %v", err)
	}
	if found.Id != doc.Id {
		t.Fatalf("Expected document %d, got %d", doc.Id, found.Id)
	}

	_, err = stores.Documents.FindDocumentByContentKey(ctx, "globex", hash)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for other tenant, got %v", err)
	}
}

func TestAddContainerTags(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:      "acme",
		Status:        core.StatusQueued,
		Type:          core.DocumentTypeText,
		ContainerTags: []string{"notes"},
		ContentHash:   core.ContentHashFromText("tagged"),
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	if err := stores.Documents.AddContainerTags(ctx, doc.Id, "notes", "work", ""); err != nil {
		t.Fatalf("Failed to add tags: %v", err)
	}

	got, err := stores.Documents.GetDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if len(got.ContainerTags) != 2 || got.ContainerTags[0] != "notes" || got.ContainerTags[1] != "work" {
		t.Fatalf("Expected [notes work], got %v", got.ContainerTags)
	}
}

func TestApplyTransitionUpdatesBothRows(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc := newQueuedDocument(t, stores, "acme", "transition me")

	err := stores.Documents.ApplyTransition(ctx, doc.Id, func(d *core.Document, j *core.IngestionJob) error {
		d.Status = core.StatusFetching
		j.Status = core.JobStatusFetching
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to apply transition: %v", err)
	}

	gotDoc, err := stores.Documents.GetDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	gotJob, err := stores.Jobs.GetJobByDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}

	if gotDoc.Status != core.StatusFetching {
		t.Fatalf("Expected fetching, got %s", gotDoc.Status)
	}
	if gotJob.Status != core.JobStatusFetching {
		t.Fatalf("Expected job fetching, got %s", gotJob.Status)
	}
	if gotDoc.UpdatedAt.Before(doc.UpdatedAt) {
		t.Fatal("Expected UpdatedAt to be non-decreasing")
	}
}

func TestApplyTransitionErrorLeavesRowsUntouched(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc := newQueuedDocument(t, stores, "acme", "untouched")

	wantErr := errors.New("mutation rejected")
	err := stores.Documents.ApplyTransition(ctx, doc.Id, func(d *core.Document, j *core.IngestionJob) error {
		d.Status = core.StatusDone
		j.Status = core.JobStatusCompleted
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected mutation error, got %v", err)
	}

	got, err := stores.Documents.GetDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.Status != core.StatusQueued {
		t.Fatalf("Expected document unchanged, got %s", got.Status)
	}
}

func TestDeleteDocumentCascades(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	content := "delete me"
	doc := newQueuedDocument(t, stores, "acme", content)

	err := stores.Chunks.InsertChunks(ctx, []*core.DocumentChunk{
		{DocumentID: doc.Id, Content: "delete", ChunkIndex: 0, CharStart: 0, CharEnd: 6},
		{DocumentID: doc.Id, Content: "me", ChunkIndex: 1, CharStart: 7, CharEnd: 9},
	})
	if err != nil {
		t.Fatalf("Failed to insert chunks: %v", err)
	}

	_, err = stores.Memories.CreateMemory(ctx, &core.Memory{
		SourceDocumentID: doc.Id,
		TenantID:         "acme",
		Content:          "a summary",
		Type:             core.MemoryTypeAutoSummary,
	})
	if err != nil {
		t.Fatalf("Failed to create memory: %v", err)
	}

	if err := stores.Documents.DeleteDocument(ctx, doc.Id); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}

	if _, err := stores.Documents.GetDocument(ctx, doc.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected document gone, got %v", err)
	}
	if _, err := stores.Jobs.GetJobByDocument(ctx, doc.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected job gone, got %v", err)
	}
	if _, err := stores.Memories.GetMemoryBySourceDocument(ctx, doc.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected memory gone, got %v", err)
	}
	count, err := stores.Chunks.CountChunks(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 chunks, got %d", count)
	}

	// The content key is freed; resubmitting the same content works.
	if _, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    "acme",
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: core.ContentHashFromText(content),
	}); err != nil {
		t.Fatalf("Expected resubmission to succeed: %v", err)
	}
}

func TestListDocuments(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		if _, err := stores.Documents.CreateDocument(ctx, &core.Document{
			TenantID:    "acme",
			Status:      core.StatusQueued,
			Type:        core.DocumentTypeText,
			ContentHash: core.ContentHashFromText(content),
		}); err != nil {
			t.Fatalf("Failed to create document: %v", err)
		}
	}

	docs, err := stores.Documents.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}
}
