package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for records. Identifiers are stable strings:
// the same ID written at index time must be used for lookups at query time.
type ID string

// NewID generates a fresh random ID for a record that has none.
func NewID() ID {
	return ID(uuid.NewString())
}

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
// Identical content always produces the identical ID, so re-indexing the same
// parent yields stable chunk IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// HashContent returns a deterministic, uniformly distributed 64-bit hash of text.
// It is the raw form of IDFromContent and is shared with the feature hasher.
func HashContent(text string) uint64 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// Record is an addressable unit of content. A record with ParentId set is a
// chunk: a sub-unit of a larger parent record. Parent payloads live in the
// record store; chunks are indexed separately for nearest-neighbor search.
type Record struct {
	Id         ID
	ParentId   ID // Empty for root records; immutable once set
	Text       string
	Tags       Tags
	Embedding  []float32
	InsertedAt time.Time // When the record was inserted into the store
	UpdatedAt  time.Time // When the record was last updated

	// Matches holds the current query's match list. It is transient: it is
	// rebuilt on every search and never serialized or persisted.
	Matches []Match
}

// IsChunk reports whether the record is a sub-unit of a parent record.
func (r *Record) IsChunk() bool {
	return r.ParentId != ""
}

// Match is a transient pairing of a target record identifier and a named
// numeric score, produced during a retrieval operation. Chunk-level matches
// also carry the chunk's parent identifier for aggregation.
type Match struct {
	TargetId ID
	ParentId ID // Parent of the matched chunk; empty for parent-level matches
	Metric   string
	Score    float32

	// Record holds the resolved full payload after resolution; nil before.
	// Resolution never overwrites TargetId or Score.
	Record *Record
}
