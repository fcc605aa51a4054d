package ingest

import "errors"

var (
	// ErrRecordStoreRequired is returned when a record store is not provided.
	ErrRecordStoreRequired = errors.New("record store required")

	// ErrChunkIndexRequired is returned when a chunk index is not provided.
	ErrChunkIndexRequired = errors.New("chunk index required")

	// ErrHasherRequired is returned when an attribute hasher is not provided.
	ErrHasherRequired = errors.New("attribute hasher required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
