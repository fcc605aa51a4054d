package hashing

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/veridex/tagrank/core"
)

const (
	// DefaultDims is the default embedding width.
	DefaultDims = 256

	// DefaultMaxVal is the default bound on a single pair's contribution
	// magnitude. Values get a much larger range than the n_dim name buckets:
	// value collisions inside a shared dimension are more frequent than name
	// collisions across dimensions, and the wider range keeps colliding
	// values from looking identical while the vector stays compact.
	DefaultMaxVal = 65536
)

// AttrHasher maps a record's tag set onto a fixed-width signed feature
// vector. Tags with overlapping name/value pairs land on overlapping nonzero
// dimensions, so hashed vectors compare by set overlap (Jaccard distance)
// rather than direction.
//
// A hasher is a pure function of its configuration: it holds no mutable
// state and is safe for concurrent use.
type AttrHasher struct {
	nDim   int
	maxVal int
	sparse bool
}

// Option configures an AttrHasher.
type Option func(*AttrHasher)

// WithDims sets the embedding width. Default is DefaultDims.
func WithDims(n int) Option {
	return func(h *AttrHasher) {
		h.nDim = n
	}
}

// WithMaxVal sets the bound on per-pair contribution magnitude.
// Default is DefaultMaxVal.
func WithMaxVal(m int) Option {
	return func(h *AttrHasher) {
		h.maxVal = m
	}
}

// WithSparseOutput selects the sparse output form for HashRecord.
// This is a storage optimization only; dense and sparse forms encode the
// same vector.
func WithSparseOutput(sparse bool) Option {
	return func(h *AttrHasher) {
		h.sparse = sparse
	}
}

// New creates a new AttrHasher. Non-positive dimensions or value bounds are
// rejected here; they are fatal configuration errors, not per-call errors.
func New(opts ...Option) (*AttrHasher, error) {
	h := &AttrHasher{
		nDim:   DefaultDims,
		maxVal: DefaultMaxVal,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.nDim <= 0 {
		return nil, ErrInvalidDims
	}
	if h.maxVal <= 0 {
		return nil, ErrInvalidMaxVal
	}
	return h, nil
}

// Dims returns the configured embedding width.
func (h *AttrHasher) Dims() int {
	return h.nDim
}

// SparseOutput reports whether the hasher was configured for sparse output.
// Callers honoring the flag store HashTagsSparse results instead of the
// dense form; the encoded vector is the same either way.
func (h *AttrHasher) SparseOutput() bool {
	return h.sparse
}

// HashTags maps a tag set to a dense feature vector of length Dims.
//
// Each pair contributes a signed magnitude to exactly one dimension, chosen
// by hashing the attribute name; dimensions hit by several pairs sum their
// contributions. Collisions are expected, not an error. The result does not
// depend on map iteration order: contributions are independent per key and
// addition commutes.
//
// An empty tag set yields nil: a record with no attributes gets no
// embedding rather than a zero vector.
func (h *AttrHasher) HashTags(tags core.Tags) []float32 {
	if len(tags) == 0 {
		return nil
	}

	vec := make([]float32, h.nDim)
	for name, value := range tags {
		nameHash := core.HashContent(name)
		dim := int(nameHash % uint64(h.nDim))
		signName := hashSign(nameHash)

		signValue, mag := h.encodeValue(value)
		vec[dim] += float32(float64(signName*signValue) * mag)
	}
	return vec
}

// HashRecord attaches the hashed embedding of the record's tags to the
// record. Records without tags are skipped; the return value reports
// whether an embedding was attached.
func (h *AttrHasher) HashRecord(record *core.Record) bool {
	vec := h.HashTags(record.Tags)
	if vec == nil {
		return false
	}
	record.Embedding = vec
	return true
}

// SparseEntry is one nonzero component of a hashed vector.
type SparseEntry struct {
	Index int
	Value float32
}

// HashTagsSparse is HashTags in sparse form: only nonzero dimensions,
// sorted by index. An empty tag set yields nil.
func (h *AttrHasher) HashTagsSparse(tags core.Tags) []SparseEntry {
	return Sparsify(h.HashTags(tags))
}

// Sparsify converts a dense vector to its sparse form.
func Sparsify(vec []float32) []SparseEntry {
	if vec == nil {
		return nil
	}
	entries := make([]SparseEntry, 0)
	for i, v := range vec {
		if v != 0 {
			entries = append(entries, SparseEntry{Index: i, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	return entries
}

// encodeValue canonicalizes a tag value and reduces it to a sign and a
// magnitude below maxVal.
//
// Numeric values pass through directly, floats keeping their fractional
// part; booleans, boolean-like strings, nulls and empty strings map to
// {0,1}; everything else falls through to a hash of its canonical string
// form. There is no error path: any value is coercible.
func (h *AttrHasher) encodeValue(v core.Value) (sign int64, mag float64) {
	switch v.Kind {
	case core.KindNull:
		return 1, 0
	case core.KindInt:
		return numericContribution(float64(v.I64), h.maxVal)
	case core.KindFloat:
		if f := v.F64; !math.IsNaN(f) && !math.IsInf(f, 0) {
			return numericContribution(f, h.maxVal)
		}
		return h.stringContribution(strconv.FormatFloat(v.F64, 'g', -1, 64))
	case core.KindBool:
		if v.B {
			return 1, 1
		}
		return 1, 0
	case core.KindString:
		s := strings.TrimSpace(v.S)
		switch strings.ToLower(s) {
		case "":
			return 1, 0
		case "true", "yes":
			return 1, 1
		case "false", "no":
			return 1, 0
		}
		return h.stringContribution(s)
	default:
		// Composite values serialize to their canonical string form,
		// with stable key ordering, before hashing.
		return h.stringContribution(v.Key())
	}
}

func numericContribution(f float64, maxVal int) (sign int64, mag float64) {
	sign = 1
	if f < 0 {
		sign = -1
		f = -f
	}
	return sign, math.Mod(f, float64(maxVal))
}

func (h *AttrHasher) stringContribution(s string) (sign int64, mag float64) {
	valueHash := core.HashContent(s)
	return hashSign(valueHash), float64(valueHash % uint64(h.maxVal))
}

// hashSign derives a deterministic sign from a hash: +1 for even, -1 for odd.
func hashSign(hash uint64) int64 {
	if hash&1 == 0 {
		return 1
	}
	return -1
}
