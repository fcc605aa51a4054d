package storage

import (
	"context"

	"github.com/veridex/tagrank/core"
)

// RecordStore is the key-value resolver for full parent payloads.
// Implementations must be thread-safe and guarantee atomic per-key
// reads and writes; cross-key transactions are not required.
type RecordStore interface {
	// PutRecords writes one or more records, keyed by their IDs.
	// Writing the same key again is an idempotent overwrite.
	// Sets InsertedAt on first write and refreshes UpdatedAt.
	// A record whose stored copy has a different parent reference is
	// rejected with core.ErrParentImmutable.
	PutRecords(ctx context.Context, records ...*core.Record) error

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.Record, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error)

	// DeleteRecords removes records by their IDs.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, ids ...core.ID) error

	// EachRecord calls fn for every stored root record, in key order.
	// Iteration stops on the first error, which is returned.
	EachRecord(ctx context.Context, fn func(record *core.Record) error) error

	// Close closes the store and releases resources.
	Close() error
}

// ChunkIndex persists chunk records and serves nearest-neighbor scans over
// their embeddings. Implementations must be thread-safe.
type ChunkIndex interface {
	// PutChunks writes chunk records. Every chunk must carry a parent
	// reference; chunks without one are rejected with ErrMissingParent.
	PutChunks(ctx context.Context, chunks ...*core.Record) error

	// ChunksByParent retrieves all chunks of a parent record.
	ChunksByParent(ctx context.Context, parentID core.ID) ([]*core.Record, error)

	// DeleteChunksByParent removes all chunks of a parent record.
	// Removing chunks of an unknown parent is a no-op.
	DeleteChunksByParent(ctx context.Context, parentID core.ID) error

	// NearestChunks scans indexed chunk embeddings and returns up to limit
	// chunk-level matches under the named metric, best first. Chunks
	// without embeddings are skipped.
	NearestChunks(ctx context.Context, vector []float32, metricName string, limit int) ([]core.Match, error)

	// Close closes the index and releases resources.
	Close() error
}
