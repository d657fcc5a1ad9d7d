package cache

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// maxDepth bounds recursion into nested or cyclic values.
const maxDepth = 32

// defaultSerializer implements Serializer using reflection. The whole argument
// list is stringified so the key carries the arity as well as every value.
type defaultSerializer struct{}

// NewDefaultSerializer creates the reflection based serializer used when no
// serializer is configured.
func NewDefaultSerializer() Serializer {
	return defaultSerializer{}
}

// Serialize builds a cache key from the argument list.
//
//	Serialize([]any{1, "a"}) == `args[2]::1::"a"`
func (s defaultSerializer) Serialize(args []any) string {
	var b strings.Builder
	b.WriteString("args[")
	b.WriteString(strconv.Itoa(len(args)))
	b.WriteString("]")

	for _, arg := range args {
		b.WriteString(KeySeparator)
		b.WriteString(s.serializeValue(reflect.ValueOf(arg), 0))
	}

	return b.String()
}

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

func (s defaultSerializer) serializeValue(rv reflect.Value, depth int) string {
	if !rv.IsValid() {
		return "nil"
	}
	if depth > maxDepth {
		return "depth:" + rv.Type().String()
	}

	rt := rv.Type()

	// Types such as time.Time carry their identity in the text form.
	if rt.Implements(textMarshalerType) && rv.CanInterface() {
		if rt.Kind() != reflect.Ptr || !rv.IsNil() {
			if text, err := rv.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
				return rt.String() + ":" + strconv.Quote(string(text))
			}
		}
	}

	switch rt.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return "func:nil"
		}
		return fmt.Sprintf("func:%#x", rv.Pointer())

	case reflect.Chan:
		if rv.IsNil() {
			return "chan:nil"
		}
		return fmt.Sprintf("chan:%#x", rv.Pointer())

	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem(), depth+1)

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return fmt.Sprintf("slice[%d]:{%s}", rv.Len(), s.serializeElems(rv, depth))

	case reflect.Array:
		return fmt.Sprintf("array[%d]:{%s}", rv.Len(), s.serializeElems(rv, depth))

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv, depth)

	case reflect.Struct:
		return s.serializeStruct(rv, rt, depth)

	case reflect.String:
		return strconv.Quote(rv.String())

	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)

	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, rt.Bits())

	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(rv.Complex(), 'g', -1, rt.Bits())
	}

	return s.jsonFallback(rv)
}

func (s defaultSerializer) serializeElems(rv reflect.Value, depth int) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.serializeValue(rv.Index(i), depth+1)
	}
	return strings.Join(parts, ",")
}

// serializeMap sorts entries by their serialized key for determinism.
func (s defaultSerializer) serializeMap(rv reflect.Value, depth int) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := s.serializeValue(iter.Key(), depth+1)
		v := s.serializeValue(iter.Value(), depth+1)
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

// serializeStruct includes the type name so structurally equal values of
// different types do not collide. Unexported fields are part of the value and
// are walked like exported ones.
func (s defaultSerializer) serializeStruct(rv reflect.Value, rt reflect.Type, depth int) string {
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		parts = append(parts, rt.Field(i).Name+":"+s.serializeValue(rv.Field(i), depth+1))
	}

	return fmt.Sprintf("%s{%s}", rt.String(), strings.Join(parts, ","))
}

// jsonFallback provides JSON serialization as a last resort
func (s defaultSerializer) jsonFallback(rv reflect.Value) string {
	if !rv.CanInterface() {
		return "fallback:" + rv.Type().String()
	}
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return "fallback:" + rv.Type().String()
	}
	return "json:" + string(data)
}
