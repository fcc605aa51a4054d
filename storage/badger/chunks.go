package badger

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/metric"
	"github.com/veridex/tagrank/storage"
)

// ChunkRepository implements storage.ChunkIndex for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkIndex = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *ChunkRepository) Close() error {
	return nil
}

// PutChunks writes chunk records and maintains the parent index.
func (r *ChunkRepository) PutChunks(ctx context.Context, chunks ...*core.Record) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.Id == "" {
				return storage.ErrMissingID
			}
			if chunk.ParentId == "" {
				return storage.ErrMissingParent
			}

			key := makeChunkKey(chunk.Id)
			old, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			if old != nil {
				if old.ParentId != chunk.ParentId {
					return core.ErrParentImmutable
				}
				chunk.InsertedAt = old.InsertedAt
			} else if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = now
			}
			chunk.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalRecord(chunk)); err != nil {
				return err
			}

			parentKey := makeChunkParentKey(chunk.ParentId, chunk.Id)
			if err := tx.Set(parentKey, []byte(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ChunksByParent retrieves all chunks of a parent record.
func (r *ChunkRepository) ChunksByParent(ctx context.Context, parentID core.ID) ([]*core.Record, error) {
	var results []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkParentKey(parentID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, startKey) {
				break
			}

			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				chunkID = core.ID(val)
				return nil
			}); err != nil {
				return err
			}

			chunk, err := readRecord(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteChunksByParent removes all chunks of a parent record.
func (r *ChunkRepository) DeleteChunksByParent(ctx context.Context, parentID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkParentKey(parentID)

		// Collect first: Badger forbids writes while an iterator is open
		// on the same transaction with default settings.
		var indexKeys [][]byte
		var chunkIDs []core.ID

		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, startKey) {
				break
			}
			indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))
			if err := iter.Item().Value(func(val []byte) error {
				chunkIDs = append(chunkIDs, core.ID(val))
				return nil
			}); err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		for _, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, id := range chunkIDs {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// NearestChunks scans indexed chunk embeddings and returns up to limit
// chunk-level matches under the named metric, best first.
func (r *ChunkRepository) NearestChunks(ctx context.Context, vector []float32, metricName string, limit int) ([]core.Match, error) {
	scoreFn, err := metric.Provider(metricName)
	if err != nil {
		return nil, err
	}
	lowerIsBetter := metric.LowerIsBetter(metricName)

	var matches []core.Match
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Record
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Embedding) == 0 {
				continue
			}

			score, err := scoreFn(vector, chunk.Embedding)
			if err != nil {
				// Width mismatches come from mixing encoders; skip
				// rather than fail the whole scan.
				r.backend.logger.Debug("skipping chunk with incompatible embedding",
					"chunk", chunk.Id, "err", err)
				continue
			}

			matches = append(matches, core.Match{
				TargetId: chunk.Id,
				ParentId: chunk.ParentId,
				Metric:   metricName,
				Score:    score,
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(matches, func(a, b core.Match) int {
		switch {
		case a.Score < b.Score:
			if lowerIsBetter {
				return -1
			}
			return 1
		case a.Score > b.Score:
			if lowerIsBetter {
				return 1
			}
			return -1
		default:
			return 0
		}
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}
