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

package core

import (
	"fmt"
	"time"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - The record must carry text or tags (or both)
//   - Timestamps must not be in the future
//
// NOT validated (populated later in the pipeline):
//   - Embedding (attached by the hasher or an encoder at index time)
//   - Id (empty is valid; an ID is assigned at ingest)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Text == "" && len(record.Tags) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyRecord)
	}

	if !IsValidTimestamp(record.InsertedAt) || !IsValidTimestamp(record.UpdatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEmbedding checks that a record's embedding, when present, has
// exactly nDim components.
func ValidateEmbedding(record *Record, nDim int) error {
	if len(record.Embedding) == 0 {
		return nil
	}
	if len(record.Embedding) != nDim {
		return fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDim, len(record.Embedding), nDim)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (zero or not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return ts.IsZero() || !ts.After(time.Now())
}
