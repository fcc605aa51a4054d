package core

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindNull represents a null value.
	KindNull Kind = iota
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindBool represents a boolean value.
	KindBool
	// KindString represents a string value.
	KindString
	// KindList represents an ordered list of values.
	KindList
	// KindMap represents a string-keyed mapping of values.
	KindMap
)

// Value is a small typed value for record attributes. Attribute values are
// heterogeneous (JSON-like); the explicit kind tag keeps canonicalization and
// serialization free of reflection.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	B    bool
	S    string
	L    []Value
	M    map[string]Value
}

// Tags is the attribute set of a record: attribute name to value.
type Tags map[string]Value

// Null returns the null Value.
func Null() Value { return Value{Kind: KindNull} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{Kind: KindInt, I64: i} }

// Float returns a float Value.
func Float(f float64) Value { return Value{Kind: KindFloat, F64: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, B: b} }

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindString, S: s} }

// List returns a list Value.
func List(vs ...Value) Value { return Value{Kind: KindList, L: vs} }

// Map returns a map Value.
func Map(m map[string]Value) Value { return Value{Kind: KindMap, M: m} }

// Key returns a stable canonical string representation of the value.
// Map entries are emitted in sorted key order, so two values that are equal
// as data always produce the same Key regardless of construction order.
//
// The representation must remain stable: hashed embeddings of composite
// values are derived from it.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindString:
		return "s:" + v.S
	case KindList:
		parts := make([]string, len(v.L))
		for i := range v.L {
			parts[i] = v.L[i].Key()
		}
		return "l:" + strings.Join(parts, "\x1f")
	case KindMap:
		keys := make([]string, 0, len(v.M))
		for k := range v.M {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.M[k].Key()
		}
		return "m:" + strings.Join(parts, "\x1f")
	default:
		return "invalid"
	}
}

// Equal reports whether two values are equal as data.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		return math.Float64bits(v.F64) == math.Float64bits(o.F64)
	case KindBool:
		return v.B == o.B
	case KindString:
		return v.S == o.S
	case KindList:
		if len(v.L) != len(o.L) {
			return false
		}
		for i := range v.L {
			if !v.L[i].Equal(o.L[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.M) != len(o.M) {
			return false
		}
		for k, vv := range v.M {
			ov, ok := o.M[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
