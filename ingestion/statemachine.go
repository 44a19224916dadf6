// Copyright 2025 The Recall Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// StateMachine drives a document and its job through the processing states.
// Document status and job status always change together in one transaction,
// so no reader can observe them out of lockstep.
type StateMachine struct {
	docs     storage.DocumentRepository
	chunks   storage.ChunkRepository
	memories storage.MemoryRepository
	logger   *slog.Logger
}

// NewStateMachine creates a state machine over the given repositories. The
// chunk and memory repositories are needed for the compensating deletes on
// failure.
func NewStateMachine(docs storage.DocumentRepository, chunks storage.ChunkRepository, memories storage.MemoryRepository) *StateMachine {
	return &StateMachine{
		docs:     docs,
		chunks:   chunks,
		memories: memories,
		logger:   slog.Default().With("component", "statemachine"),
	}
}

// Advance moves a document to the next status. Only the immediate successor
// of the current status is accepted; anything else returns
// ErrInvalidTransition and changes nothing.
func (m *StateMachine) Advance(ctx context.Context, documentID core.ID, next core.Status) error {
	return m.AdvanceWith(ctx, documentID, next, nil)
}

// AdvanceWith is Advance with an extra mutation applied to the document and
// job rows inside the same transaction as the status change. The commit step
// uses it to publish content atomically with the done status.
func (m *StateMachine) AdvanceWith(ctx context.Context, documentID core.ID, next core.Status, extra func(doc *core.Document, job *core.IngestionJob) error) error {
	err := m.docs.ApplyTransition(ctx, documentID, func(doc *core.Document, job *core.IngestionJob) error {
		if !doc.Status.CanAdvanceTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, next)
		}

		doc.Status = next
		job.Status = core.JobStatusFor(next)
		if job.Status.Terminal() {
			job.CompletedAt = time.Now().UTC().Truncate(time.Microsecond)
		}

		if extra != nil {
			return extra(doc, job)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("status advanced", "document_id", documentID, "status", next)
	return nil
}

// Fail moves a document to the failed status, recording cause on the job,
// and deletes any chunks and memory written for it. Failing an already
// failed document is a no-op; failing a done document returns
// ErrInvalidTransition.
//
// If the chunk cleanup itself fails, the job is marked RollbackIncomplete
// and the returned error wraps core.ErrRollbackIncomplete.
func (m *StateMachine) Fail(ctx context.Context, documentID core.ID, cause error) error {
	alreadyFailed := false
	err := m.docs.ApplyTransition(ctx, documentID, func(doc *core.Document, job *core.IngestionJob) error {
		if doc.Status == core.StatusFailed {
			alreadyFailed = true
			return nil
		}
		if doc.Status.Terminal() {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, core.StatusFailed)
		}

		doc.Status = core.StatusFailed
		job.Status = core.JobStatusFailed
		job.ErrorMessage = cause.Error()
		job.CompletedAt = time.Now().UTC().Truncate(time.Microsecond)
		return nil
	})
	if err != nil {
		return err
	}
	if alreadyFailed {
		return nil
	}

	m.logger.Warn("document failed", "document_id", documentID, "cause", cause)

	if memErr := m.memories.DeleteMemoryBySourceDocument(ctx, documentID); memErr != nil {
		m.logger.Error("memory rollback failed", "document_id", documentID, "err", memErr)
	}

	if delErr := m.chunks.DeleteChunksByDocument(ctx, documentID); delErr != nil {
		m.logger.Error("chunk rollback failed", "document_id", documentID, "err", delErr)

		markErr := m.docs.ApplyTransition(ctx, documentID, func(_ *core.Document, job *core.IngestionJob) error {
			job.RollbackIncomplete = true
			return nil
		})
		if markErr != nil {
			m.logger.Error("failed to record incomplete rollback", "document_id", documentID, "err", markErr)
		}
		return fmt.Errorf("%w: %w", core.ErrRollbackIncomplete, delErr)
	}

	return nil
}

// CurrentStatus returns the document's current status.
func (m *StateMachine) CurrentStatus(ctx context.Context, documentID core.ID) (core.Status, error) {
	doc, err := m.docs.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	return doc.Status, nil
}
