package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// DedupGuard answers whether a submission's content already exists for a
// tenant. The check itself is advisory; the storage layer enforces the
// (tenant, content hash) uniqueness transactionally, so two concurrent
// submissions of the same content still converge on one document.
type DedupGuard struct {
	docs   storage.DocumentRepository
	logger *slog.Logger
}

// NewDedupGuard creates a guard over the document repository.
func NewDedupGuard(docs storage.DocumentRepository) *DedupGuard {
	return &DedupGuard{
		docs:   docs,
		logger: slog.Default().With("component", "dedup"),
	}
}

// CheckDuplicate looks up the content key for a tenant. It returns the
// existing document and true when the key is taken, or (nil, false) when the
// content is new. Hashing is scoped per tenant; the same content under two
// tenants is not a duplicate.
func (g *DedupGuard) CheckDuplicate(ctx context.Context, tenantID, contentHash string) (*core.Document, bool, error) {
	doc, err := g.docs.FindDocumentByContentKey(ctx, tenantID, contentHash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	g.logger.Debug("duplicate content", "tenant_id", tenantID, "document_id", doc.Id)
	return doc, true, nil
}
