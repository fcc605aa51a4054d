// Package storage defines the persistence contracts for records and chunks.
//
// RecordStore is the key-value resolver: full parent payloads are written at
// index time and fetched back by identifier at query time. ChunkIndex holds
// the chunk-level records whose embeddings are scanned during search. Both
// contracts require per-key atomicity only; concrete backends live in
// subpackages (see storage/badger).
package storage
