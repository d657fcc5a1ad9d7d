package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMapCache(t *testing.T) {
	ctx := context.Background()
	c := NewMapCache()

	if _, ok, _ := c.Get(ctx, 1); ok {
		t.Fatal("expected miss on empty cache")
	}

	_ = c.Set(ctx, 1, "int")
	_ = c.Set(ctx, "1", "string")
	_ = c.Set(ctx, nil, "nil key")

	if v, _, _ := c.Get(ctx, 1); v != "int" {
		t.Errorf("expected int entry, got %v", v)
	}
	if v, _, _ := c.Get(ctx, "1"); v != "string" {
		t.Errorf("expected string entry, got %v", v)
	}
	if v, _, _ := c.Get(ctx, nil); v != "nil key" {
		t.Errorf("expected nil key entry, got %v", v)
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", c.Len())
	}

	_ = c.Set(ctx, "empty", nil)
	if v, ok, _ := c.Get(ctx, "empty"); !ok || v != nil {
		t.Errorf("expected stored nil to be found, got %v (%v)", v, ok)
	}

	_ = c.Delete(ctx, 1)
	if ok, _ := c.Has(ctx, 1); ok {
		t.Error("expected key to be deleted")
	}

	_ = c.Clear(ctx)
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestMapCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMapCache()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%8)
			_ = c.Set(ctx, key, i)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 8 {
		t.Errorf("expected 8 keys, got %d", c.Len())
	}
}
