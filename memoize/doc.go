// Package memoize wraps functions with a cache keyed by their arguments.
//
// # Overview
//
// Memoize returns a function with the same type as its input:
//
//	fetch := memoize.Memoize(func(ctx context.Context, id string) (*User, error) {
//		return repo.GetByID(ctx, id)
//	})
//
// The engine inspects the function and its cache once, at wrap time, and
// binds one of four invocation variants:
//
//   - monadic-sync: one argument, keyed on the argument itself when it is a
//     primitive (bool, integer, float) and on its serialized form otherwise
//   - variadic-sync: any other arity, keyed on the serialized argument list
//   - monadic-async and variadic-async: same keys, used when the cache
//     performs I/O or the function returns a deferred value
//
// # Deferred values
//
// A function returning *Future[T] or a receive channel is asynchronous. The
// memoized version returns a pending deferred value immediately; the settled
// value is what ends up in the cache, and hits return a settled deferred
// value of the same type. Results typed as an interface are checked at run
// time, so a func(int) any producing a channel is still awaited before the
// value is stored.
//
// # Failures
//
// A non nil error, a panic or a rejected deferred value is returned to the
// caller and never cached. Concurrent calls that miss on the same key all
// run the function.
//
// A failing cache read is returned as the error result when the function has
// one, and rejects the deferred value for asynchronous results. A function
// with no error result has nowhere to report it: the read is logged at warn
// level and treated as a miss, so the function runs. Failing cache writes are
// logged and never reach the caller.
//
// # Context
//
// A leading context.Context parameter is excluded from the key and from the
// arity used to pick a variant. It is passed to the function and to every
// cache operation of the call.
package memoize
