package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// MemoryRepository implements storage.MemoryRepository for BadgerDB.
type MemoryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.MemoryRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository(backend *Backend) (*MemoryRepository, error) {
	idSeq, err := backend.GetSequence(memoryIDSeq)
	if err != nil {
		return nil, err
	}

	return &MemoryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *MemoryRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *MemoryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateMemory stores a new memory and its source-document index entry.
func (r *MemoryRepository) CreateMemory(ctx context.Context, memory *core.Memory) (*core.Memory, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		srcKey := makeMemorySourceKey(memory.SourceDocumentID)
		if _, err := tx.Get(srcKey); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		memory.Id = core.ID(id)
		memory.CreatedAt = storageNow()

		if err := tx.Set(makeMemoryKey(memory.Id), storage.MarshalMemory(memory)); err != nil {
			return err
		}
		if err := tx.Set(srcKey, storage.MarshalID(memory.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return memory, nil
}

// GetMemoryBySourceDocument retrieves the memory derived from a document.
func (r *MemoryRepository) GetMemoryBySourceDocument(ctx context.Context, documentID core.ID) (*core.Memory, error) {
	var result *core.Memory
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeMemorySourceKey(documentID))
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

		memItem, err := tx.Get(makeMemoryKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return memItem.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalMemory(val)
			return err
		})
	}, false)
	return result, err
}

// DeleteMemoryBySourceDocument removes the memory derived from a document.
func (r *MemoryRepository) DeleteMemoryBySourceDocument(ctx context.Context, documentID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		srcKey := makeMemorySourceKey(documentID)
		item, err := tx.Get(srcKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
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

		if err := tx.Delete(makeMemoryKey(id)); err != nil {
			return err
		}
		if err := tx.Delete(srcKey); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
