package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/storage"
)

// RecordRepository implements storage.RecordStore for BadgerDB.
type RecordRepository struct {
	backend *Backend
}

var _ storage.RecordStore = (*RecordRepository)(nil)

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(backend *Backend) *RecordRepository {
	return &RecordRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *RecordRepository) Close() error {
	return nil
}

// PutRecords writes one or more records, keyed by their IDs.
func (r *RecordRepository) PutRecords(ctx context.Context, records ...*core.Record) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.Id == "" {
				return storage.ErrMissingID
			}

			key := makeRecordKey(record.Id)

			// Overwrites keep the original insertion time and must not
			// move a record under a different parent.
			old, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			if old != nil {
				if old.ParentId != record.ParentId {
					return core.ErrParentImmutable
				}
				record.InsertedAt = old.InsertedAt
			} else if record.InsertedAt.IsZero() {
				record.InsertedAt = now
			}
			record.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecord retrieves a single record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	var result *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeRecordKey(id))
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

// GetRecords retrieves multiple records by their IDs.
func (r *RecordRepository) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error) {
	var result []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// DeleteRecords removes records by their IDs.
func (r *RecordRepository) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(id)
			record, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// EachRecord calls fn for every stored root record, in key order.
func (r *RecordRepository) EachRecord(ctx context.Context, fn func(record *core.Record) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.Record
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readRecord reads a record from the transaction. Missing keys yield
// (nil, nil).
func readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalRecord(val)
		return unmarshalErr
	})
	return record, err
}
