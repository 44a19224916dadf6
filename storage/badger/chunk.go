package badger

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// InsertChunks stores chunk rows in batch order. When a batch outgrows a
// single transaction (badger.ErrTxnTooBig) the filled transaction is
// committed and a fresh one continues the batch. A failure after such a
// split leaves earlier chunks committed; the storage orchestrator
// compensates with DeleteChunksByDocument.
func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []*core.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	now := storageNow()
	tx := r.backend.db.NewTransaction(true)
	// tx is replaced on an ErrTxnTooBig split, so the deferred discard must
	// read the variable, not capture the first transaction.
	defer func() { tx.Discard() }()

	for _, chunk := range chunks {
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		chunk.Id = core.ID(id)
		chunk.CreatedAt = now

		key := makeChunkKey(chunk.DocumentID, chunk.ChunkIndex)
		value := storage.MarshalChunk(chunk)

		err = tx.Set(key, value)
		if errors.Is(err, badger.ErrTxnTooBig) {
			if err := tx.Commit(); err != nil {
				return err
			}
			tx = r.backend.db.NewTransaction(true)
			err = tx.Set(key, value)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetChunksByDocument returns a document's chunks ordered by ChunkIndex.
// Ordering falls out of the key layout: chunk keys sort by BigEndian index.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.DocumentChunk, error) {
	var results []*core.DocumentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkDocPrefix(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.DocumentChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)
	return results, err
}

// UpdateChunks rewrites existing chunk rows.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks []*core.DocumentChunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.DocumentID, chunk.ChunkIndex)
			if _, err := tx.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountChunks returns the number of chunk rows for a document.
func (r *ChunkRepository) CountChunks(ctx context.Context, documentID core.ID) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkDocPrefix(documentID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteChunksByDocument removes every chunk row for a document.
func (r *ChunkRepository) DeleteChunksByDocument(ctx context.Context, documentID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteChunksInTx(tx, documentID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// deleteChunksInTx deletes a document's chunk keys within a transaction.
func deleteChunksInTx(tx *badger.Txn, documentID core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkDocPrefix(documentID)
	opts.PrefetchValues = false

	var keys [][]byte
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// FindSimilarChunks scans committed chunks and ranks them by similarity to
// the query vector. Chunks are only visible once their document reached the
// done state, so a commit in flight never leaks partial results.
func (r *ChunkRepository) FindSimilarChunks(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error) {
	var results []*core.ChunkMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		docDone := make(map[core.ID]bool)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkIterPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.DocumentChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Embedding) == 0 {
				continue
			}

			done, seen := docDone[chunk.DocumentID]
			if !seen {
				doc, err := readDocument(tx, makeDocumentKey(chunk.DocumentID))
				if err != nil {
					return err
				}
				done = doc != nil && doc.Status == core.StatusDone
				docDone[chunk.DocumentID] = done
			}
			if !done {
				continue
			}

			similarity := dotProduct(vector, chunk.Embedding)
			if similarity >= minSimilarity {
				results = append(results, &core.ChunkMatch{
					Chunk: chunk,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.ChunkMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// dotProduct calculates the dot product of two vectors.
// For normalized vectors this equals cosine similarity.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
