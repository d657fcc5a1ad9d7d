package cache

import "context"

// Async marks c as asynchronous. Optional capabilities of c stay reachable
// through the returned value.
func Async(c Cache) Cache {
	return &asyncCache{Cache: c}
}

type asyncCache struct {
	Cache
}

func (a *asyncCache) Async() bool {
	return true
}

func (a *asyncCache) Has(ctx context.Context, key Key) (bool, error) {
	if h, ok := a.Cache.(Haser); ok {
		return h.Has(ctx, key)
	}
	_, found, err := a.Cache.Get(ctx, key)
	return found, err
}

func (a *asyncCache) Delete(ctx context.Context, key Key) error {
	if d, ok := a.Cache.(Deleter); ok {
		return d.Delete(ctx, key)
	}
	return nil
}

func (a *asyncCache) Clear(ctx context.Context) error {
	if c, ok := a.Cache.(Clearer); ok {
		return c.Clear(ctx)
	}
	return nil
}
