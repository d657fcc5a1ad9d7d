// Package repositorycache memoizes the read methods of go-repository-bun
// repositories.
//
// # Overview
//
// CachedRepository wraps a base repository. Get, GetByID, GetByIdentifier,
// List and Count are memoized with the memoize package, keyed on their
// arguments with the leading context left out. Everything else is delegated
// to the base repository.
//
// # Basic Usage
//
//	base := myrepo.New(db)
//
//	cached, err := repositorycache.New(base)
//	if err != nil {
//		return err
//	}
//
//	user, err := cached.GetByID(ctx, "user-123")
//	users, total, err := cached.List(ctx)
//
// Options are the memoize options, so backends and serializers are shared
// with plain memoized functions:
//
//	factory, _ := cache.NewTTLFactory(cache.DefaultConfig())
//	cached, err := repositorycache.New(base,
//		memoize.WithCache(factory),
//		memoize.WithLogger(logger),
//	)
//
// # Keys
//
// Keys are the serialized arguments prefixed with the method name, for
// example GetByID::args[2]::"42"::slice:nil. The prefix keeps methods apart
// when they share one store. Criteria functions serialize by pointer, which is
// stable for the life of the process only.
//
// # Invalidation
//
// Every successful write (Create, Update, Upsert, Delete and their Many, Tx
// and Force variants) clears every cache the repository created. Failed
// writes leave the caches untouched. Invalidate clears on demand.
//
// Caches must implement cache.Clearer; New fails otherwise.
//
// # Transactions
//
// Reads inside a transaction (*Tx methods) and Raw queries bypass the cache,
// so uncommitted data is never stored and never shadowed.
//
// # Errors
//
// Errors from the base repository are returned unchanged and are never
// cached.
package repositorycache
