// Package ingest provides pipeline orchestration for indexing records.
//
// The Pipeline type manages the indexing workflow for parent records:
//   - Validating records and storing them in the record store
//   - Decomposing each record into chunks via a Chunker
//   - Embedding chunks asynchronously, by attribute hashing for tagged
//     chunks or through an external embedder for text chunks
//
// Embedding is performed concurrently using worker pools. Errors during
// async processing are logged but do not fail the ingest operation.
//
// The Reindexer walks every stored parent and recomputes hashed chunk
// embeddings, for example after changing the hasher's dimensions.
package ingest
