package ingest

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/encode"
	"github.com/veridex/tagrank/hashing"
	"github.com/veridex/tagrank/storage"
)

// Pipeline orchestrates the indexing of parent records.
// It manages concurrent embedding of chunks by hashing and text encoding.
type Pipeline struct {
	records   storage.RecordStore
	chunks    storage.ChunkIndex
	chunker   Chunker
	hashPool  *ants.Pool
	embedPool *ants.Pool
	hashProc  processor
	embedProc processor
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.hashPool != nil {
			p.hashPool.Release()
		}
		if p.embedPool != nil {
			p.embedPool.Release()
		}

		hashPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		embedPool, err := ants.NewPool(size)
		if err != nil {
			hashPool.Release()
			return err
		}

		p.hashPool = hashPool
		p.embedPool = embedPool
		return nil
	}
}

// WithChunker sets a custom decomposition strategy.
// Default is DefaultChunker.
func WithChunker(chunker Chunker) Option {
	return func(p *Pipeline) error {
		if chunker == nil {
			chunker = &DefaultChunker{}
		}
		p.chunker = chunker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingest pipeline. The embedder may be nil for
// tag-only deployments; text chunks are then stored without embeddings.
func NewPipeline(
	records storage.RecordStore,
	chunks storage.ChunkIndex,
	hasher *hashing.AttrHasher,
	embedder encode.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if records == nil {
		return nil, ErrRecordStoreRequired
	}
	if chunks == nil {
		return nil, ErrChunkIndexRequired
	}
	if hasher == nil {
		return nil, ErrHasherRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	hashPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	embedPool, err := ants.NewPool(poolSize)
	if err != nil {
		hashPool.Release()
		return nil, err
	}

	p := &Pipeline{
		records:   records,
		chunks:    chunks,
		chunker:   &DefaultChunker{},
		hashPool:  hashPool,
		embedPool: embedPool,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	hashProc, err := newHashProcessor(chunks, hasher, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	embedProc, err := newEmbedProcessor(chunks, embedder, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.hashProc = hashProc
	p.embedProc = embedProc

	return p, nil
}

// Ingest validates and stores parent records, decomposes them into chunks,
// and embeds the chunks asynchronously. Records without an identifier get
// a fresh one assigned. Errors during async embedding are logged but do
// not fail the ingest.
func (p *Pipeline) Ingest(ctx context.Context, records ...*core.Record) error {
	ids, err := p.ingestStored(ctx, records...)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	// Submit for async processing
	p.hashPool.Submit(func() {
		if err := p.hashProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error hashing chunk embeddings", "err", err)
		}
	})

	p.embedPool.Submit(func() {
		if err := p.embedProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error embedding chunks", "err", err)
		}
	})

	return nil
}

// IngestSync is Ingest with the embedding work performed inline instead of
// on the worker pools. Useful when the caller needs chunks queryable as
// soon as the call returns.
func (p *Pipeline) IngestSync(ctx context.Context, records ...*core.Record) error {
	ids, err := p.ingestStored(ctx, records...)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := p.hashProc.process(ctx, ids...); err != nil {
		return err
	}
	return p.embedProc.process(ctx, ids...)
}

// ingestStored validates and stores the parents and their chunks, returning
// the identifiers of parents that produced chunks.
func (p *Pipeline) ingestStored(ctx context.Context, records ...*core.Record) ([]core.ID, error) {
	if len(records) == 0 {
		return nil, nil
	}

	for _, record := range records {
		if record.Id == "" {
			record.Id = core.NewID()
		}
		if err := core.ValidateRecord(record); err != nil {
			return nil, err
		}
	}

	if err := p.records.PutRecords(ctx, records...); err != nil {
		return nil, err
	}

	ids := make([]core.ID, 0, len(records))
	for _, record := range records {
		chunks, err := p.chunker.Chunk(record)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			continue
		}
		if err := p.chunks.PutChunks(ctx, chunks...); err != nil {
			return nil, err
		}
		ids = append(ids, record.Id)
	}

	return ids, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.hashPool != nil {
		p.hashPool.Release()
	}
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}
