package memoize

import (
	"context"
	"fmt"
	"reflect"

	goerrors "github.com/goliatone/go-errors"
)

// Awaitable is a deferred value. Functions returning an Awaitable, or a
// receive channel, are treated as asynchronous: the settled value is cached,
// never the deferred value itself.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// Future is the deferred value produced by async memoized functions.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn in a new goroutine. A panic in fn rejects the future with ErrPanic.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = goerrors.Wrap(ErrPanic, goerrors.CategoryInternal, fmt.Sprint(r))
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Resolved returns a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: v}
	close(f.done)
	return f
}

// Rejected returns a future already settled with err.
func Rejected[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Get blocks until the future settles or ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if f == nil {
		return zero, goerrors.Wrap(ErrClosedWithoutValue, goerrors.CategoryOperation, "nil future")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Await implements Awaitable.
func (f *Future[T]) Await(ctx context.Context) (any, error) {
	v, err := f.Get(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// futureType lets the engine build futures of the right T from a reflect.Type.
// Methods are called on typed nil receivers.
type futureType interface {
	valueType() reflect.Type
	spawn(ctx context.Context, fn func(ctx context.Context) (any, error)) any
	settled(v any) any
}

func (*Future[T]) valueType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (*Future[T]) spawn(ctx context.Context, fn func(ctx context.Context) (any, error)) any {
	return Go(ctx, func(ctx context.Context) (T, error) {
		var zero T
		v, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if v == nil {
			return zero, nil
		}
		t, ok := v.(T)
		if !ok {
			return zero, goerrors.Wrap(ErrInvalidResultType, goerrors.CategoryInternal, fmt.Sprintf("got %T", v))
		}
		return t, nil
	})
}

func (*Future[T]) settled(v any) any {
	t, _ := v.(T)
	return Resolved(t)
}

var futureTypeIface = reflect.TypeOf((*futureType)(nil)).Elem()
