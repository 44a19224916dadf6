package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// StatusReport is a point-in-time view of a document's processing state,
// combining the document row and its job row.
type StatusReport struct {
	DocumentID         core.ID
	Status             core.Status
	JobStatus          core.JobStatus
	ErrorMessage       string
	RollbackIncomplete bool
	UpdatedAt          time.Time
	CompletedAt        time.Time
}

// Terminal reports whether processing has finished.
func (r *StatusReport) Terminal() bool {
	return r.Status.Terminal()
}

// Observer exposes document processing state to callers.
type Observer struct {
	docs   storage.DocumentRepository
	jobs   storage.JobRepository
	logger *slog.Logger
}

// NewObserver creates an observer over the given repositories.
func NewObserver(docs storage.DocumentRepository, jobs storage.JobRepository) *Observer {
	return &Observer{
		docs:   docs,
		jobs:   jobs,
		logger: slog.Default().With("component", "observer"),
	}
}

// GetStatus returns the current processing state of a document.
// Returns storage.ErrNotFound for unknown documents.
func (o *Observer) GetStatus(ctx context.Context, documentID core.ID) (*StatusReport, error) {
	doc, err := o.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	job, err := o.jobs.GetJobByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &StatusReport{
		DocumentID:         documentID,
		Status:             doc.Status,
		JobStatus:          job.Status,
		ErrorMessage:       job.ErrorMessage,
		RollbackIncomplete: job.RollbackIncomplete,
		UpdatedAt:          doc.UpdatedAt,
		CompletedAt:        job.CompletedAt,
	}, nil
}

// GetDocument returns the document row itself.
func (o *Observer) GetDocument(ctx context.Context, documentID core.ID) (*core.Document, error) {
	return o.docs.GetDocument(ctx, documentID)
}

// WaitForTerminal polls until the document reaches done or failed, the
// context expires, or an error occurs. The poll interval starts small and
// grows, capped at a quarter second.
func (o *Observer) WaitForTerminal(ctx context.Context, documentID core.ID) (*StatusReport, error) {
	delay := 5 * time.Millisecond
	const maxDelay = 250 * time.Millisecond

	for {
		report, err := o.GetStatus(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if report.Terminal() {
			return report, nil
		}

		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
