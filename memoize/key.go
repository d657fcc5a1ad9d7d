package memoize

import (
	"math"

	"github.com/goliatone/go-memoize/cache"
)

// isPrimitive reports whether v can be used as a cache key without
// serialization. Strings are serialized so they never collide with the
// serializer output. NaN is serialized because it never equals itself.
func isPrimitive(v any) bool {
	switch x := v.(type) {
	case nil, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return true
	case float32:
		return !math.IsNaN(float64(x))
	case float64:
		return !math.IsNaN(x)
	}
	return false
}

// monadicKey keys a call on its first argument.
func monadicKey(args []any, s cache.Serializer) cache.Key {
	if len(args) == 0 {
		return nil
	}
	if isPrimitive(args[0]) {
		return args[0]
	}
	return s.Serialize(args[:1])
}

// variadicKey keys a call on its whole argument list.
func variadicKey(args []any, s cache.Serializer) cache.Key {
	return s.Serialize(args)
}
