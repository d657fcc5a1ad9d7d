package cache

import (
	"bytes"
	"encoding"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	hex "github.com/tmthrgd/go-hex"
	"github.com/vmihailenco/msgpack/v5"
)

type msgpackSerializer struct {
	fallback defaultSerializer
}

// NewMsgpackSerializer returns a serializer that encodes the argument list
// with msgpack and hex encodes the payload. Maps are written in the order of
// their serialized keys. Arguments msgpack cannot key faithfully (funcs,
// channels, structs with unexported or map typed fields) fall back to the
// default serializer.
func NewMsgpackSerializer() Serializer {
	return msgpackSerializer{}
}

func (s msgpackSerializer) Serialize(args []any) string {
	normalized := make([]any, len(args))
	for i, arg := range args {
		v, ok := s.normalize(reflect.ValueOf(arg), 0)
		if !ok {
			return s.fallback.Serialize(args)
		}
		normalized[i] = v
	}

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(normalized); err != nil {
		return s.fallback.Serialize(args)
	}
	return "mp:" + hex.EncodeToString(buf.Bytes())
}

// normalize rebuilds every map reachable from rv as a sortedMap. The encoder
// ranges over typed maps in random order even with SetSortMapKeys.
func (s msgpackSerializer) normalize(rv reflect.Value, depth int) (any, bool) {
	if !rv.IsValid() {
		return nil, true
	}
	if depth > maxDepth {
		return nil, false
	}
	if !mayHoldMap(rv.Type(), map[reflect.Type]bool{}) {
		if !msgpackFaithful(rv.Type(), map[reflect.Type]bool{}) {
			return nil, false
		}
		return rv.Interface(), true
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, true
		}
		return s.normalize(rv.Elem(), depth+1)

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, true
		}
		out := make([]any, rv.Len())
		for i := range out {
			v, ok := s.normalize(rv.Index(i), depth+1)
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true

	case reflect.Map:
		if rv.IsNil() {
			return nil, true
		}
		entries := make(sortedMap, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, ok := s.normalize(iter.Key(), depth+1)
			if !ok {
				return nil, false
			}
			v, ok := s.normalize(iter.Value(), depth+1)
			if !ok {
				return nil, false
			}
			entries = append(entries, mapEntry{
				order: s.fallback.serializeValue(iter.Key(), depth+1),
				key:   k,
				value: v,
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
		return entries, true
	}

	// Structs holding maps are encoded field by field by msgpack, out of reach.
	return nil, false
}

type mapEntry struct {
	order string
	key   any
	value any
}

// sortedMap encodes as a msgpack map with a fixed entry order.
type sortedMap []mapEntry

var _ msgpack.CustomEncoder = sortedMap(nil)

func (m sortedMap) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(m)); err != nil {
		return err
	}
	for _, e := range m {
		if err := enc.Encode(e.key); err != nil {
			return err
		}
		if err := enc.Encode(e.value); err != nil {
			return err
		}
	}
	return nil
}

// mayHoldMap reports whether a value of t can reach a map, including through
// interface typed parts whose dynamic value is unknown.
func mayHoldMap(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Map, reflect.Interface:
		return true
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return mayHoldMap(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if mayHoldMap(t.Field(i).Type, seen) {
				return true
			}
		}
	}
	return false
}

// msgpackFaithful reports whether msgpack encodes every part of a t value.
// Unexported struct fields are dropped by the encoder.
func msgpackFaithful(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return true
	}
	seen[t] = true

	if encodesItself(t) {
		return true
	}

	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return msgpackFaithful(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("msgpack") == "-" {
				return false
			}
			if !msgpackFaithful(f.Type, seen) {
				return false
			}
		}
	}
	return true
}

var (
	timeType            = reflect.TypeOf(time.Time{})
	customEncoderType   = reflect.TypeOf((*msgpack.CustomEncoder)(nil)).Elem()
	marshalerType       = reflect.TypeOf((*msgpack.Marshaler)(nil)).Elem()
	binaryMarshalerType = reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem()
)

// encodesItself reports types msgpack encodes through a method or extension
// instead of their fields.
func encodesItself(t reflect.Type) bool {
	if t == timeType {
		return true
	}
	return t.Implements(customEncoderType) ||
		t.Implements(marshalerType) ||
		t.Implements(binaryMarshalerType)
}

type hashedSerializer struct {
	inner Serializer
}

// NewHashedSerializer wraps inner and replaces its output with an xxhash
// digest. Keys stay short for remote stores at the cost of a (tiny) collision
// probability.
func NewHashedSerializer(inner Serializer) Serializer {
	if inner == nil {
		inner = NewDefaultSerializer()
	}
	return hashedSerializer{inner: inner}
}

func (s hashedSerializer) Serialize(args []any) string {
	return "xxh:" + strconv.FormatUint(xxhash.Sum64String(s.inner.Serialize(args)), 16)
}
