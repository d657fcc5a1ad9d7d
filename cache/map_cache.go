package cache

import (
	"context"

	"github.com/goliatone/go-memoize/internal/cacheinfra"
	"github.com/puzpuzpuz/xsync/v3"
)

// MapCache is the default in-memory cache. Entries never expire.
type MapCache struct {
	m *xsync.MapOf[string, any]
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{m: xsync.NewMapOf[string, any]()}
}

func (c *MapCache) Get(_ context.Context, key Key) (any, bool, error) {
	v, ok := c.m.Load(cacheinfra.KeyString(key))
	return v, ok, nil
}

func (c *MapCache) Set(_ context.Context, key Key, value any) error {
	c.m.Store(cacheinfra.KeyString(key), value)
	return nil
}

func (c *MapCache) Has(_ context.Context, key Key) (bool, error) {
	_, ok := c.m.Load(cacheinfra.KeyString(key))
	return ok, nil
}

func (c *MapCache) Delete(_ context.Context, key Key) error {
	c.m.Delete(cacheinfra.KeyString(key))
	return nil
}

func (c *MapCache) Clear(_ context.Context) error {
	c.m.Clear()
	return nil
}

// Len returns the number of stored entries.
func (c *MapCache) Len() int {
	return c.m.Size()
}

// NewMapFactory returns a Factory creating a fresh MapCache per memoized function.
func NewMapFactory() Factory {
	return FactoryFunc(func() (Cache, error) {
		return NewMapCache(), nil
	})
}

// DefaultFactory is used when no cache is configured.
func DefaultFactory() Factory {
	return NewMapFactory()
}
