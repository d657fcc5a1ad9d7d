// Package cache defines the storage port used by memoized functions, the
// default stores and the key serializers.
//
// # Overview
//
// A Cache only needs Get and Set. Get reports whether the key was found so a
// stored nil value counts as a hit:
//
//	type Cache interface {
//		Get(ctx context.Context, key Key) (value any, found bool, err error)
//		Set(ctx context.Context, key Key, value any) error
//	}
//
// Stores may also implement Haser, Deleter and Clearer. The memoize engine
// never requires them but the repository decorator uses Clearer to drop read
// caches after writes.
//
// # Stores
//
//   - MapCache: concurrent map without expiration, the default
//   - TTL store: sturdyc client with TTL and percentage based eviction
//   - Ristretto store: cost bounded admission cache
//   - Redis store: external store, msgpack encoded values returned as Encoded
//
// Every memoized function gets its own instance from a Factory. Use Shared to
// hand the same instance to several functions.
//
// # Sync and async stores
//
// A store whose operations perform I/O should implement AsyncCapable. Stores
// that predate the capability are still detected when they expose a storage
// adapter namespace through OptionsProvider:
//
//	cfg := cache.DefaultConfig()
//	cfg.Namespace = "keyv"
//	factory, _ := cache.NewTTLFactory(cfg) // treated as async
//
// Async wraps any cache and marks it as asynchronous.
//
// # Key Serialization Strategy
//
// The default serializer stringifies the whole argument list with reflection:
//
//   - Strings are quoted so 1 and "1" produce different keys
//   - Slices, arrays and maps are serialized recursively, map entries sorted
//   - Structs carry their type name and exported fields
//   - Values implementing encoding.TextMarshaler use their text form
//   - Functions and channels use their pointer, stable only within a process
//
// NewMsgpackSerializer and NewHashedSerializer trade readability for compact
// keys, which suits remote stores.
package cache
