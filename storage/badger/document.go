package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateDocument stores a new document and its content-key index entry in
// one transaction. The content-key read is part of the transaction's read
// set, so two concurrent creates of the same (tenant, hash) cannot both
// commit: the loser observes either the existing index entry or a badger
// conflict, and both surface as storage.ErrDuplicateKey.
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ckey := makeContentKey(doc.TenantID, doc.ContentHash)
		_, err := tx.Get(ckey)
		if err == nil {
			return storage.ErrDuplicateKey
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		doc.Id = core.ID(id)

		now := storageNow()
		doc.CreatedAt = now
		doc.UpdatedAt = now

		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(ckey, storage.MarshalID(doc.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if errors.Is(err, badger.ErrConflict) {
		// Lost the insert race; equivalent to the key already existing.
		return nil, storage.ErrDuplicateKey
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindDocumentByContentKey resolves the content-key index for a tenant.
func (r *DocumentRepository) FindDocumentByContentKey(ctx context.Context, tenantID, contentHash string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeContentKey(tenantID, contentHash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			// Index entry without a document row; treat as absent.
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ApplyTransition atomically mutates a document and its job record.
func (r *DocumentRepository) ApplyTransition(ctx context.Context, documentID core.ID, fn func(doc *core.Document, job *core.IngestionJob) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, makeDocumentKey(documentID))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		job, err := readJob(tx, makeJobKey(documentID))
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}

		if err := fn(doc, job); err != nil {
			return err
		}

		now := storageNow()
		doc.UpdatedAt = laterOf(doc.UpdatedAt, now)
		job.UpdatedAt = laterOf(job.UpdatedAt, now)

		if err := tx.Set(makeDocumentKey(documentID), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(makeJobKey(documentID), storage.MarshalJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddContainerTags links a document to additional container tags.
func (r *DocumentRepository) AddContainerTags(ctx context.Context, id core.ID, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		changed := false
		for _, tag := range tags {
			if tag == "" || slices.Contains(doc.ContainerTags, tag) {
				continue
			}
			doc.ContainerTags = append(doc.ContainerTags, tag)
			changed = true
		}
		if !changed {
			return nil
		}

		doc.UpdatedAt = laterOf(doc.UpdatedAt, storageNow())
		if err := tx.Set(makeDocumentKey(id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListDocuments returns all documents.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = documentIterPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, doc)
		}
		return nil
	}, false)
	return results, err
}

// DeleteDocument removes a document and everything hanging off it: the
// content-key index entry, chunk rows, job and memory rows.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeContentKey(doc.TenantID, doc.ContentHash)); err != nil {
			return err
		}
		if err := tx.Delete(makeJobKey(id)); err != nil {
			return err
		}

		// Memory row plus its source index, when present.
		item, err := tx.Get(makeMemorySourceKey(id))
		if err == nil {
			var memID core.ID
			if err := item.Value(func(val []byte) error {
				var err error
				memID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			if err := tx.Delete(makeMemoryKey(memID)); err != nil {
				return err
			}
			if err := tx.Delete(makeMemorySourceKey(id)); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := deleteChunksInTx(tx, id); err != nil {
			return err
		}

		if err := tx.Delete(makeDocumentKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return err
}

// readDocument reads and unmarshals a document row inside a transaction.
// Returns nil (no error) when the key is absent.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}

// storageNow returns the current UTC time truncated to the serialization
// resolution, so stored timestamps round-trip exactly.
func storageNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// laterOf keeps stored timestamps monotonically non-decreasing.
func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
