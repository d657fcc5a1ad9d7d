package cacheinfra

import "fmt"

// Encoded is a msgpack payload returned by stores that keep values as bytes.
// Callers decode it into the type they expect.
type Encoded []byte

// StoreOptions describes a storage adapter. A non-empty Namespace marks the
// store as external.
type StoreOptions struct {
	Namespace string
}

// KeyString flattens a cache key into the string form used by string keyed
// backends. Serialized keys are used as is, primitives carry their type so
// int(1) and "1" never share a slot.
func KeyString(key any) string {
	switch k := key.(type) {
	case nil:
		return "nil"
	case string:
		return k
	default:
		return fmt.Sprintf("%T:%v", key, key)
	}
}
