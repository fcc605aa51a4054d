// Copyright 2025 Veridex Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tagrank

import (
	"context"
	"io"
	"log/slog"

	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/encode"
	"github.com/veridex/tagrank/hashing"
	"github.com/veridex/tagrank/ingest"
	"github.com/veridex/tagrank/metric"
	"github.com/veridex/tagrank/rank"
	"github.com/veridex/tagrank/storage"
	"github.com/veridex/tagrank/storage/badger"
)

// Engine ties the storage, hashing, encoding, and ranking layers together
// behind explicit Index/Search/Get operations. All state is per-instance;
// opening two engines on different paths gives two independent indexes.
type Engine struct {
	backend  *badger.Backend
	records  storage.RecordStore
	chunks   storage.ChunkIndex
	hasher   *hashing.AttrHasher
	embedder encode.Embedder
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	inMemory   bool
	hasherOpts []hashing.Option
	embedder   encode.Embedder
}

// WithInMemory opens the engine on an in-memory backend. Intended for tests.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithHasherOptions configures the attribute hasher used for tagged
// records and queries.
func WithHasherOptions(opts ...hashing.Option) EngineOption {
	return func(o *engineOptions) {
		o.hasherOpts = append(o.hasherOpts, opts...)
	}
}

// WithEmbedder sets the text embedder. Without one the engine indexes and
// queries tagged records only.
func WithEmbedder(embedder encode.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// Open opens an engine over the database at filePath, creating it if absent.
func Open(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	hasher, err := hashing.New(options.hasherOpts...)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	return &Engine{
		backend:  backend,
		records:  badger.NewRecordRepository(backend),
		chunks:   badger.NewChunkRepository(backend),
		hasher:   hasher,
		embedder: options.embedder,
		logger:   slog.Default().With("component", "engine"),
	}, nil
}

// Close releases the engine's storage resources.
func (e *Engine) Close() error {
	if err := e.chunks.Close(); err != nil {
		e.logger.Error("error closing chunk index", "err", err)
		return err
	}
	if err := e.records.Close(); err != nil {
		e.logger.Error("error closing record store", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// RecordStore exposes the engine's parent record store.
func (e *Engine) RecordStore() storage.RecordStore {
	return e.records
}

// ChunkIndex exposes the engine's chunk index.
func (e *Engine) ChunkIndex() storage.ChunkIndex {
	return e.chunks
}

// Hasher exposes the engine's attribute hasher.
func (e *Engine) Hasher() *hashing.AttrHasher {
	return e.hasher
}

// NewPipeline creates an ingest pipeline over the engine's stores.
func (e *Engine) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(e.records, e.chunks, e.hasher, e.embedder, opts...)
}

// NewReindexer creates a reindexer over the engine's stores.
func (e *Engine) NewReindexer(config *ingest.ReindexConfig, progress io.Writer) *ingest.Reindexer {
	return ingest.NewReindexer(e.records, e.chunks, e.hasher, config, progress)
}

// Index stores the given parent records and indexes their chunks, waiting
// for embedding to finish before returning.
func (e *Engine) Index(ctx context.Context, records ...*core.Record) error {
	pipeline, err := e.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	return pipeline.IngestSync(ctx, records...)
}

// Get retrieves a parent record by identifier.
func (e *Engine) Get(ctx context.Context, id core.ID) (*core.Record, error) {
	return e.records.GetRecord(ctx, id)
}

// Search embeds the query record, matches it against indexed chunks, and
// attaches ranked, resolved parent-level matches to it. Tagged queries are
// hashed and compared by Jaccard distance; text queries go through the
// embedder and cosine similarity. Tags take precedence: a query carrying
// both is searched by its tags and the text is ignored. The returned
// report lists parents that
// matched but could not be resolved.
func (e *Engine) Search(ctx context.Context, query *core.Record, limit int) (*rank.ResolveReport, error) {
	if query == nil {
		return nil, rank.ErrNilQuery
	}

	metricName := metric.Jaccard
	if len(query.Tags) > 0 {
		e.hasher.HashRecord(query)
	} else if query.Text != "" {
		if e.embedder == nil {
			return nil, ErrNoEmbedder
		}
		embedding, err := e.embedder.EmbedText(ctx, query.Text)
		if err != nil {
			return nil, err
		}
		query.Embedding = embedding
		metricName = metric.Cosine
	}
	if len(query.Embedding) == 0 {
		return nil, core.ErrEmptyRecord
	}

	// Chunk-level candidates. Fetch more than the caller's limit so that
	// several chunks of one parent don't crowd out other parents.
	candidateLimit := 0
	if limit > 0 {
		candidateLimit = limit * 4
	}
	matches, err := e.chunks.NearestChunks(ctx, query.Embedding, metricName, candidateLimit)
	if err != nil {
		return nil, err
	}
	query.Matches = matches

	ranker, err := rank.NewRanker(e.records, rank.WithMetric(metricName), rank.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}

	report, err := ranker.RankAndResolve(ctx, query)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(query.Matches) > limit {
		query.Matches = query.Matches[:limit]
	}

	return report, nil
}
