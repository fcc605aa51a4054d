// Package metric provides the distance and similarity functions used for
// chunk-level matching.
//
// Two polarities exist: distance metrics ("jaccard", "l2") where lower is
// more similar, and similarity metrics ("cosine") where higher is more
// similar. Callers aggregating or sorting scores must consult LowerIsBetter
// rather than assume one convention.
package metric

import (
	"errors"
	"fmt"
	"math"
)

// Metric names understood by Provider.
const (
	Cosine  = "cosine"
	Jaccard = "jaccard"
	L2      = "l2"
)

// ErrSizeMismatch is returned when two vectors have different lengths.
var ErrSizeMismatch = errors.New("vector sizes do not match")

// Func computes a score for two equal-length vectors.
type Func func(a, b []float32) (float32, error)

// Provider returns the score function for the given metric name.
func Provider(name string) (Func, error) {
	switch name {
	case Cosine:
		return CosineSimilarity, nil
	case Jaccard:
		return JaccardDistance, nil
	case L2:
		return SquaredL2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %q", name)
	}
}

// LowerIsBetter reports the polarity of a metric: true for distance metrics,
// false for similarity metrics. Unknown metrics are treated as distances,
// the convention of the store's scan order.
func LowerIsBetter(name string) bool {
	return name != Cosine
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Magnitude calculates the L2 norm of a vector.
func Magnitude(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Zero-magnitude input yields a similarity of 0.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrSizeMismatch
	}

	magA := Magnitude(a)
	magB := Magnitude(b)
	if magA == 0 || magB == 0 {
		return 0, nil
	}

	return Dot(a, b) / (magA * magB), nil
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
func SquaredL2(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrSizeMismatch
	}

	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum, nil
}

// JaccardDistance calculates 1 - |intersection| / |union| where a dimension
// is in the intersection when both vectors carry the same nonzero value and
// in the union when either vector is nonzero there. Feature-hashed vectors
// compare by set overlap, so this is the metric paired with the hasher.
// Two all-zero vectors have distance 0.
func JaccardDistance(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrSizeMismatch
	}

	var inter, union int
	for i := range a {
		av, bv := a[i], b[i]
		if av == 0 && bv == 0 {
			continue
		}
		union++
		if av == bv {
			inter++
		}
	}
	if union == 0 {
		return 0, nil
	}
	return 1 - float32(inter)/float32(union), nil
}
