package cache

import (
	"context"

	"github.com/goliatone/go-memoize/internal/cacheinfra"
)

// Key identifies a memoized call. It is either a primitive scalar, used as is
// for single primitive argument calls, or the string produced by a Serializer.
type Key = any

// Cache is the storage port used by memoized functions. Get reports found so a
// stored nil value is distinguishable from a miss.
type Cache interface {
	Get(ctx context.Context, key Key) (value any, found bool, err error)
	Set(ctx context.Context, key Key, value any) error
}

// Haser is implemented by caches that can check for a key without reading it.
type Haser interface {
	Has(ctx context.Context, key Key) (bool, error)
}

// Deleter is implemented by caches that support removing a single key.
type Deleter interface {
	Delete(ctx context.Context, key Key) error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// AsyncCapable is implemented by caches whose operations perform I/O.
// Memoized functions bound to an async cache use the async strategies.
type AsyncCapable interface {
	Async() bool
}

// StoreOptions describes a storage adapter.
type StoreOptions = cacheinfra.StoreOptions

// OptionsProvider is implemented by storage adapters. A non-empty namespace
// marks the store as asynchronous when it does not implement AsyncCapable.
type OptionsProvider interface {
	Options() StoreOptions
}

// IsAsync reports whether c should be treated as an asynchronous cache.
// An explicit AsyncCapable answer wins over the namespace heuristic.
func IsAsync(c Cache) bool {
	if c == nil {
		return false
	}
	if ac, ok := c.(AsyncCapable); ok {
		return ac.Async()
	}
	if op, ok := c.(OptionsProvider); ok {
		return op.Options().Namespace != ""
	}
	return false
}

// Factory creates a cache instance. Memoize calls Create once per wrapped function.
type Factory interface {
	Create() (Cache, error)
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc func() (Cache, error)

// Create calls f.
func (f FactoryFunc) Create() (Cache, error) {
	return f()
}

// Shared returns a Factory that hands out c on every call, letting several
// memoized functions use the same store.
func Shared(c Cache) Factory {
	return FactoryFunc(func() (Cache, error) {
		return c, nil
	})
}
