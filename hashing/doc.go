// Package hashing provides deterministic feature hashing of record
// attributes.
//
// The AttrHasher maps arbitrary tagged key/value attributes onto a
// fixed-width numeric vector: the attribute name selects the dimension, the
// canonicalized value selects the signed magnitude. Records sharing
// attribute pairs land on overlapping nonzero dimensions, which makes the
// vectors comparable by set overlap (see the metric package's Jaccard
// distance) without any trained model.
package hashing
