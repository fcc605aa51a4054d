package core

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted types. Value needs a
// kind-discriminated encoding, so the serializers compose the mus-go
// primitives directly instead of relying on code generation.
//
// Map entries are written in sorted key order, which keeps the encoding
// deterministic: equal tag sets always produce equal bytes.
//
// Match lists are never serialized; matches are transient query artifacts.

var (
	// ValueMUS serializes Value.
	ValueMUS = valueMUS{}
	// TagsMUS serializes Tags.
	TagsMUS = tagsMUS{}
	// RecordMUS serializes Record.
	RecordMUS = recordMUS{}
)

type valueMUS struct{}

func (s valueMUS) Marshal(v Value, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Kind), bs)
	switch v.Kind {
	case KindNull:
	case KindInt:
		n += varint.Int64.Marshal(v.I64, bs[n:])
	case KindFloat:
		n += varint.Uint64.Marshal(math.Float64bits(v.F64), bs[n:])
	case KindBool:
		n += ord.Bool.Marshal(v.B, bs[n:])
	case KindString:
		n += ord.String.Marshal(v.S, bs[n:])
	case KindList:
		n += varint.Uint64.Marshal(uint64(len(v.L)), bs[n:])
		for i := range v.L {
			n += s.Marshal(v.L[i], bs[n:])
		}
	case KindMap:
		n += varint.Uint64.Marshal(uint64(len(v.M)), bs[n:])
		for _, k := range sortedTagKeys(v.M) {
			n += ord.String.Marshal(k, bs[n:])
			n += s.Marshal(v.M[k], bs[n:])
		}
	}
	return n
}

func (s valueMUS) Unmarshal(bs []byte) (v Value, n int, err error) {
	kind, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Kind = Kind(kind)
	var n1 int
	switch v.Kind {
	case KindNull:
	case KindInt:
		v.I64, n1, err = varint.Int64.Unmarshal(bs[n:])
		n += n1
	case KindFloat:
		var bits uint64
		bits, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		v.F64 = math.Float64frombits(bits)
	case KindBool:
		v.B, n1, err = ord.Bool.Unmarshal(bs[n:])
		n += n1
	case KindString:
		v.S, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
	case KindList:
		var length uint64
		length, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v.L = make([]Value, length)
		for i := uint64(0); i < length; i++ {
			v.L[i], n1, err = s.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	case KindMap:
		var length uint64
		length, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v.M = make(map[string]Value, length)
		for i := uint64(0); i < length; i++ {
			var k string
			k, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			var elem Value
			elem, n1, err = s.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.M[k] = elem
		}
	default:
		err = fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}
	return
}

func (s valueMUS) Size(v Value) (size int) {
	size = varint.Uint64.Size(uint64(v.Kind))
	switch v.Kind {
	case KindInt:
		size += varint.Int64.Size(v.I64)
	case KindFloat:
		size += varint.Uint64.Size(math.Float64bits(v.F64))
	case KindBool:
		size += ord.Bool.Size(v.B)
	case KindString:
		size += ord.String.Size(v.S)
	case KindList:
		size += varint.Uint64.Size(uint64(len(v.L)))
		for i := range v.L {
			size += s.Size(v.L[i])
		}
	case KindMap:
		size += varint.Uint64.Size(uint64(len(v.M)))
		for k, elem := range v.M {
			size += ord.String.Size(k)
			size += s.Size(elem)
		}
	}
	return size
}

type tagsMUS struct{}

func (s tagsMUS) Marshal(t Tags, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(t)), bs)
	for _, k := range sortedTagKeys(t) {
		n += ord.String.Marshal(k, bs[n:])
		n += ValueMUS.Marshal(t[k], bs[n:])
	}
	return n
}

func (s tagsMUS) Unmarshal(bs []byte) (t Tags, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	t = make(Tags, length)
	var n1 int
	for i := uint64(0); i < length; i++ {
		var k string
		k, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		var v Value
		v, n1, err = ValueMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		t[k] = v
	}
	return
}

func (s tagsMUS) Size(t Tags) (size int) {
	size = varint.Uint64.Size(uint64(len(t)))
	for k, v := range t {
		size += ord.String.Size(k)
		size += ValueMUS.Size(v)
	}
	return size
}

type recordMUS struct{}

func (s recordMUS) Marshal(r Record, bs []byte) (n int) {
	n = ord.String.Marshal(string(r.Id), bs)
	n += ord.String.Marshal(string(r.ParentId), bs[n:])
	n += ord.String.Marshal(r.Text, bs[n:])
	n += TagsMUS.Marshal(r.Tags, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(r.Embedding)), bs[n:])
	for _, f := range r.Embedding {
		n += varint.Uint64.Marshal(uint64(math.Float32bits(f)), bs[n:])
	}
	n += varint.Int64.Marshal(r.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(r.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (s recordMUS) Unmarshal(bs []byte) (r Record, n int, err error) {
	var n1 int
	var str string
	str, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Id = ID(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.ParentId = ID(str)
	r.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Tags, n1, err = TagsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length uint64
	length, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		r.Embedding = make([]float32, length)
		for i := uint64(0); i < length; i++ {
			var bits uint64
			bits, n1, err = varint.Uint64.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			r.Embedding[i] = math.Float32frombits(uint32(bits))
		}
	}
	var us int64
	us, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.InsertedAt = microTime(us)
	us, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.UpdatedAt = microTime(us)
	return
}

func (s recordMUS) Size(r Record) (size int) {
	size = ord.String.Size(string(r.Id))
	size += ord.String.Size(string(r.ParentId))
	size += ord.String.Size(r.Text)
	size += TagsMUS.Size(r.Tags)
	size += varint.Uint64.Size(uint64(len(r.Embedding)))
	for _, f := range r.Embedding {
		size += varint.Uint64.Size(uint64(math.Float32bits(f)))
	}
	size += varint.Int64.Size(r.InsertedAt.UnixMicro())
	size += varint.Int64.Size(r.UpdatedAt.UnixMicro())
	return size
}

func sortedTagKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// microTime restores a UTC timestamp from its UnixMicro form, mapping the
// marshaled zero time back to the zero time.
func microTime(us int64) time.Time {
	if us == zeroUnixMicro {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}

var zeroUnixMicro = time.Time{}.UnixMicro()
