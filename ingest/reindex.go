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

package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/hashing"
	"github.com/veridex/tagrank/storage"
)

// ReindexConfig holds configuration for the reindex operation.
type ReindexConfig struct {
	// BatchSize is the number of parents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of parents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed writes
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultReindexConfig returns a ReindexConfig with sensible defaults.
func DefaultReindexConfig() *ReindexConfig {
	return &ReindexConfig{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer recomputes hashed chunk embeddings for every stored parent.
// Run it after changing the hasher's dimensions or magnitude bound, so that
// indexed vectors match what queries will hash against.
type Reindexer struct {
	records  storage.RecordStore
	chunks   storage.ChunkIndex
	hasher   *hashing.AttrHasher
	config   *ReindexConfig
	progress io.Writer
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	records storage.RecordStore,
	chunks storage.ChunkIndex,
	hasher *hashing.AttrHasher,
	config *ReindexConfig,
	progress io.Writer,
) *Reindexer {
	if config == nil {
		config = DefaultReindexConfig()
	}

	return &Reindexer{
		records:  records,
		chunks:   chunks,
		hasher:   hasher,
		config:   config,
		progress: progress,
	}
}

// Run executes the reindex operation. Every tagged chunk of every stored
// parent is rehashed with the configured hasher. Progress is reported to
// the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	// Count parents first so progress has a denominator.
	var parentIDs []core.ID
	err := r.records.EachRecord(ctx, func(record *core.Record) error {
		parentIDs = append(parentIDs, record.Id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enumerate records: %w", err)
	}

	total := len(parentIDs)
	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in database (0 records)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d records (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for start := 0; start < total; start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > total {
			end = total
		}

		if err := r.processBatch(ctx, parentIDs[start:end]); err != nil {
			return err
		}

		processed += end - start
		tracker.Update(processed)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d records in %v (%.1f records/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// processBatch rehashes the tagged chunks of one batch of parents.
func (r *Reindexer) processBatch(ctx context.Context, parentIDs []core.ID) error {
	for _, parentID := range parentIDs {
		chunks, err := r.chunks.ChunksByParent(ctx, parentID)
		if err != nil {
			return fmt.Errorf("failed to load chunks for %s: %w", parentID, err)
		}

		var rehashed []*core.Record
		for _, chunk := range chunks {
			if r.hasher.HashRecord(chunk) {
				rehashed = append(rehashed, chunk)
			}
		}
		if len(rehashed) == 0 {
			continue
		}

		err = RetryWithBackoff(ctx, func() error {
			return r.chunks.PutChunks(ctx, rehashed...)
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to store rehashed chunks after %d attempts: %w",
				r.config.MaxRetries, err)
		}
	}
	return nil
}
