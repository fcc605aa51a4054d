package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/encode"
	"github.com/veridex/tagrank/hashing"
	"github.com/veridex/tagrank/storage"
)

// hashProcessor embeds tagged chunks by attribute hashing.
type hashProcessor struct {
	chunks storage.ChunkIndex
	hasher *hashing.AttrHasher
	logger *slog.Logger
}

var _ processor = (*hashProcessor)(nil)

func newHashProcessor(chunks storage.ChunkIndex, hasher *hashing.AttrHasher, logger *slog.Logger) (processor, error) {
	if chunks == nil {
		return nil, ErrChunkIndexRequired
	}
	if hasher == nil {
		return nil, ErrHasherRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &hashProcessor{
		chunks: chunks,
		hasher: hasher,
		logger: logger.With("processor", "hashing"),
	}, nil
}

// process hashes the tags of every tagged chunk under the given parents.
func (hp *hashProcessor) process(ctx context.Context, parentIDs ...core.ID) error {
	for _, parentID := range parentIDs {
		chunks, err := hp.chunks.ChunksByParent(ctx, parentID)
		if err != nil {
			hp.logger.Error("error retrieving chunks", "parent", parentID, "err", err)
			return err
		}

		var hashed []*core.Record
		for _, chunk := range chunks {
			if hp.hasher.HashRecord(chunk) {
				hashed = append(hashed, chunk)
			}
		}
		if len(hashed) == 0 {
			continue
		}

		if err := hp.chunks.PutChunks(ctx, hashed...); err != nil {
			hp.logger.Error("error storing hashed chunks", "parent", parentID, "err", err)
			return err
		}
	}
	return nil
}

// embedProcessor embeds text chunks through an external embedder.
type embedProcessor struct {
	chunks   storage.ChunkIndex
	embedder encode.Embedder
	logger   *slog.Logger
}

var _ processor = (*embedProcessor)(nil)

func newEmbedProcessor(chunks storage.ChunkIndex, embedder encode.Embedder, logger *slog.Logger) (processor, error) {
	if chunks == nil {
		return nil, ErrChunkIndexRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embedProcessor{
		chunks:   chunks,
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

// process embeds every text chunk under the given parents in one batch
// per parent. Tagged chunks belong to the hash processor and are skipped.
func (ep *embedProcessor) process(ctx context.Context, parentIDs ...core.ID) error {
	if ep.embedder == nil {
		// Tag-only deployments run without an embedder.
		return nil
	}

	for _, parentID := range parentIDs {
		chunks, err := ep.chunks.ChunksByParent(ctx, parentID)
		if err != nil {
			ep.logger.Error("error retrieving chunks", "parent", parentID, "err", err)
			return err
		}

		var textChunks []*core.Record
		for _, chunk := range chunks {
			if len(chunk.Tags) == 0 && chunk.Text != "" {
				textChunks = append(textChunks, chunk)
			}
		}
		if len(textChunks) == 0 {
			continue
		}

		texts := make([]string, len(textChunks))
		for i, chunk := range textChunks {
			texts[i] = chunk.Text
		}

		ep.logger.Debug("generating embeddings for chunks", "parent", parentID, "chunks", len(texts))
		embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			ep.logger.Error("error generating embeddings", "parent", parentID, "err", err)
			return err
		}
		if len(embeddings) != len(textChunks) {
			return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(textChunks), len(embeddings))
		}

		for i := range embeddings {
			textChunks[i].Embedding = embeddings[i]
		}

		if err := ep.chunks.PutChunks(ctx, textChunks...); err != nil {
			ep.logger.Error("error storing embedded chunks", "parent", parentID, "err", err)
			return err
		}
	}
	return nil
}
