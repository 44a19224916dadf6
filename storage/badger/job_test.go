package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

func TestJobCreateAndGet(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc, err := stores.Documents.CreateDocument(ctx, &core.Document{
		TenantID:    "acme",
		Status:      core.StatusQueued,
		Type:        core.DocumentTypeText,
		ContentHash: core.ContentHashFromText("job doc"),
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	job, err := stores.Jobs.CreateJob(ctx, &core.IngestionJob{
		DocumentID: doc.Id,
		Status:     core.JobStatusQueued,
	})
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	if job.Id == 0 {
		t.Fatal("Expected non-zero job ID")
	}
	if !job.CompletedAt.IsZero() {
		t.Fatal("Expected zero CompletedAt for a new job")
	}

	got, err := stores.Jobs.GetJobByDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if got.Status != core.JobStatusQueued {
		t.Fatalf("Expected queued, got %s", got.Status)
	}
}

func TestJobOnePerDocument(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc := newQueuedDocument(t, stores, "acme", "single job")

	_, err := stores.Jobs.CreateJob(ctx, &core.IngestionJob{
		DocumentID: doc.Id,
		Status:     core.JobStatusQueued,
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey for second job, got %v", err)
	}
}

func TestJobUpdate(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc := newQueuedDocument(t, stores, "acme", "update job")

	job, err := stores.Jobs.GetJobByDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}

	job.Status = core.JobStatusFailed
	job.ErrorMessage = "boom"
	updated, err := stores.Jobs.UpdateJob(ctx, job)
	if err != nil {
		t.Fatalf("Failed to update job: %v", err)
	}
	if updated.UpdatedAt.Before(job.CreatedAt) {
		t.Fatal("Expected UpdatedAt to be bumped")
	}

	got, err := stores.Jobs.GetJobByDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if got.Status != core.JobStatusFailed || got.ErrorMessage != "boom" {
		t.Fatalf("Unexpected job after update: %+v", got)
	}
}

func TestJobGetNotFound(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.Jobs.GetJobByDocument(context.Background(), 12345)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
