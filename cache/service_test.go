package cache

import (
	"context"
	"errors"
	"testing"
)

type namespacedCache struct {
	*MapCache
	ns string
}

func (c namespacedCache) Options() StoreOptions {
	return StoreOptions{Namespace: c.ns}
}

type explicitCache struct {
	namespacedCache
	async bool
}

func (c explicitCache) Async() bool {
	return c.async
}

func TestIsAsync(t *testing.T) {
	tests := []struct {
		name  string
		cache Cache
		want  bool
	}{
		{name: "nil cache", cache: nil, want: false},
		{name: "plain map cache", cache: NewMapCache(), want: false},
		{name: "storage adapter without namespace", cache: namespacedCache{MapCache: NewMapCache()}, want: false},
		{name: "storage adapter with namespace", cache: namespacedCache{MapCache: NewMapCache(), ns: "keyv"}, want: true},
		{name: "explicit capability wins over namespace", cache: explicitCache{namespacedCache: namespacedCache{MapCache: NewMapCache(), ns: "keyv"}, async: false}, want: false},
		{name: "explicit async", cache: explicitCache{namespacedCache: namespacedCache{MapCache: NewMapCache()}, async: true}, want: true},
		{name: "async wrapper", cache: Async(NewMapCache()), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAsync(tt.cache); got != tt.want {
				t.Errorf("IsAsync() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShared(t *testing.T) {
	c := NewMapCache()
	f := Shared(c)

	a, err := f.Create()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := f.Create()
	if a != b || a != Cache(c) {
		t.Error("expected Shared to return the same instance on every Create")
	}
}

func TestFactoryFunc(t *testing.T) {
	boom := errors.New("boom")
	f := FactoryFunc(func() (Cache, error) { return nil, boom })
	if _, err := f.Create(); !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}

	fresh := NewMapFactory()
	a, _ := fresh.Create()
	b, _ := fresh.Create()
	if a == b {
		t.Error("expected map factory to create distinct caches")
	}
}

func TestAsync_PassesThroughCapabilities(t *testing.T) {
	ctx := context.Background()
	inner := NewMapCache()
	c := Async(inner)

	_ = c.Set(ctx, "k", 1)
	if v, ok, _ := inner.Get(ctx, "k"); !ok || v != 1 {
		t.Fatalf("expected write to reach inner cache, got %v (%v)", v, ok)
	}

	if ok, _ := c.(Haser).Has(ctx, "k"); !ok {
		t.Error("expected Has through async wrapper")
	}
	_ = c.(Deleter).Delete(ctx, "k")
	if ok, _ := inner.Has(ctx, "k"); ok {
		t.Error("expected Delete through async wrapper")
	}

	_ = c.Set(ctx, "a", 1)
	_ = c.(Clearer).Clear(ctx)
	if inner.Len() != 0 {
		t.Errorf("expected Clear through async wrapper, %d entries left", inner.Len())
	}
}
