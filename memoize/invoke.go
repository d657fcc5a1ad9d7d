package memoize

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-memoize/cache"
	"go.uber.org/zap"
)

var encodedType = reflect.TypeOf(cache.Encoded(nil))

// binding is the state closed over by a memoized function.
type binding struct {
	fn         reflect.Value
	shape      *shape
	cache      cache.Cache
	serializer cache.Serializer
	logger     *zap.Logger
	debug      bool
	name       string
	fnName     string

	// dynamic holds the concrete deferred type last produced through an
	// interface typed result, so hits can hand back the same kind of value.
	dynamic atomic.Pointer[reflect.Type]
}

func (b *binding) monadicSync(in []reflect.Value) []reflect.Value {
	ctx, args := b.shape.split(in)
	return b.inline(ctx, in, monadicKey(args, b.serializer))
}

func (b *binding) variadicSync(in []reflect.Value) []reflect.Value {
	ctx, args := b.shape.split(in)
	return b.inline(ctx, in, variadicKey(args, b.serializer))
}

func (b *binding) monadicAsync(in []reflect.Value) []reflect.Value {
	ctx, args := b.shape.split(in)
	key := monadicKey(args, b.serializer)
	if b.shape.deferred() {
		return b.spawn(ctx, in, key)
	}
	return b.inline(ctx, in, key)
}

func (b *binding) variadicAsync(in []reflect.Value) []reflect.Value {
	ctx, args := b.shape.split(in)
	key := variadicKey(args, b.serializer)
	if b.shape.deferred() {
		return b.spawn(ctx, in, key)
	}
	return b.inline(ctx, in, key)
}

// inline runs the lookup, the call and the store in the caller goroutine.
func (b *binding) inline(ctx context.Context, in []reflect.Value, key cache.Key) []reflect.Value {
	val, found, err := b.lookup(ctx, key)
	if err != nil && b.shape.hasErr {
		return b.fail(err)
	}
	if found {
		return b.results(b.wrap(val))
	}

	out := b.call(in)
	if b.shape.hasErr && !out[1].IsNil() {
		return out
	}

	settled, consumed, err := b.settle(ctx, out[0])
	if err != nil {
		return out
	}
	b.store(ctx, key, settled)

	// The produced channel was drained while settling.
	if consumed {
		if v, ok := assign(settled, b.shape.settledType); ok {
			out[0] = b.wrap(v)
		}
	}
	return out
}

// spawn returns a pending deferred value and resolves it in the background.
func (b *binding) spawn(ctx context.Context, in []reflect.Value, key cache.Key) []reflect.Value {
	resolve := func(ctx context.Context) (any, error) {
		return b.resolve(ctx, in, key)
	}

	if b.shape.kind == kindFuture {
		return b.results(reflect.ValueOf(b.shape.future.spawn(ctx, resolve)))
	}

	elem := b.shape.settledType
	ch := reflect.MakeChan(reflect.ChanOf(reflect.BothDir, elem), 1)
	pending := Go(ctx, resolve)
	go func() {
		defer ch.Close()
		v, err := pending.Get(context.Background())
		if err != nil {
			// A channel cannot carry the error; it only survives in this log.
			b.logger.Warn("memoize deferred call failed",
				zap.String("func", b.fnName),
				zap.Any("key", key),
				zap.Error(err),
			)
			return
		}
		if val, ok := assign(v, elem); ok {
			ch.Send(val)
		}
	}()
	return b.results(ch.Convert(b.shape.out))
}

// resolve produces the settled value for key, from the cache or the function.
func (b *binding) resolve(ctx context.Context, in []reflect.Value, key cache.Key) (any, error) {
	val, found, err := b.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return val.Interface(), nil
	}

	out := b.call(in)
	if b.shape.hasErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}

	settled, _, err := b.settle(ctx, out[0])
	if err != nil {
		return nil, err
	}
	b.store(ctx, key, settled)
	return settled, nil
}

func (b *binding) call(in []reflect.Value) []reflect.Value {
	if b.shape.variadic {
		return b.fn.CallSlice(in)
	}
	return b.fn.Call(in)
}

// lookup reads key and converts a hit into a value of the settled type.
// Values that cannot be converted are reported as misses.
func (b *binding) lookup(ctx context.Context, key cache.Key) (reflect.Value, bool, error) {
	raw, found, err := b.cache.Get(ctx, key)
	if err != nil {
		err = goerrors.Wrap(err, goerrors.CategoryExternal, "memoize cache get")
		b.logger.Warn("memoize cache get failed",
			zap.String("func", b.fnName),
			zap.Any("key", key),
			zap.Error(err),
		)
		return reflect.Value{}, false, err
	}
	if !found {
		b.trace("memoize miss", key)
		return reflect.Value{}, false, nil
	}

	if enc, ok := raw.(cache.Encoded); ok && b.shape.settledType != encodedType {
		v, err := cache.Decode(enc, b.shape.settledType)
		if err != nil {
			b.logger.Warn("memoize cached value decode failed",
				zap.String("func", b.fnName),
				zap.Any("key", key),
				zap.Error(err),
			)
			b.trace("memoize miss", key)
			return reflect.Value{}, false, nil
		}
		b.trace("memoize hit", key)
		return v, true, nil
	}

	v, ok := assign(raw, b.shape.settledType)
	if !ok {
		b.logger.Warn("memoize cached value type mismatch",
			zap.String("func", b.fnName),
			zap.Any("key", key),
			zap.String("want", b.shape.settledType.String()),
			zap.String("got", fmt.Sprintf("%T", raw)),
		)
		b.trace("memoize miss", key)
		return reflect.Value{}, false, nil
	}

	b.trace("memoize hit", key)
	return v, true, nil
}

// store writes the settled value. Failures are logged and never returned.
func (b *binding) store(ctx context.Context, key cache.Key, value any) {
	if err := b.cache.Set(ctx, key, value); err != nil {
		b.logger.Warn("memoize cache set failed",
			zap.String("func", b.fnName),
			zap.Any("key", key),
			zap.Error(err),
		)
	}
}

// settle awaits a produced deferred value. consumed reports whether the
// produced value was a channel that has been drained.
func (b *binding) settle(ctx context.Context, produced reflect.Value) (settled any, consumed bool, err error) {
	switch b.shape.kind {
	case kindChan:
		v, err := receive(ctx, produced)
		return v, true, err

	case kindFuture:
		if produced.IsNil() {
			return nil, false, goerrors.Wrap(ErrClosedWithoutValue, goerrors.CategoryOperation, "nil future")
		}
		v, err := produced.Interface().(Awaitable).Await(ctx)
		return v, false, err

	case kindDynamic:
		if produced.IsNil() {
			return nil, false, nil
		}
		elem := produced.Elem()
		if elem.Kind() == reflect.Chan && elem.Type().ChanDir()&reflect.RecvDir != 0 {
			b.remember(elem.Type())
			v, err := receive(ctx, elem)
			return v, true, err
		}
		if aw, ok := elem.Interface().(Awaitable); ok {
			b.remember(elem.Type())
			v, err := aw.Await(ctx)
			return v, false, err
		}
		return elem.Interface(), false, nil
	}

	return produced.Interface(), false, nil
}

func (b *binding) remember(t reflect.Type) {
	if p := b.dynamic.Load(); p != nil && *p == t {
		return
	}
	b.dynamic.Store(&t)
}

// wrap turns a settled value into a value of the result type.
func (b *binding) wrap(val reflect.Value) reflect.Value {
	switch b.shape.kind {
	case kindChan:
		return closedChan(b.shape.out, val)
	case kindFuture:
		return reflect.ValueOf(b.shape.future.settled(val.Interface()))
	case kindDynamic:
		if p := b.dynamic.Load(); p != nil {
			if rv, ok := rebuild(*p, val, b.shape.out); ok {
				return rv
			}
		}
	}
	return val
}

// rebuild creates a settled deferred value of type t holding val, returned
// as a value of the interface type out.
func rebuild(t reflect.Type, val reflect.Value, out reflect.Type) (reflect.Value, bool) {
	var d reflect.Value
	switch {
	case t.Kind() == reflect.Chan:
		inner, ok := assign(val.Interface(), t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		d = closedChan(t, inner)
	case t.Implements(futureTypeIface):
		ft := reflect.Zero(t).Interface().(futureType)
		if _, ok := assign(val.Interface(), ft.valueType()); !ok {
			return reflect.Value{}, false
		}
		d = reflect.ValueOf(ft.settled(val.Interface()))
	default:
		d = reflect.ValueOf(Resolved[any](val.Interface()))
	}

	if !d.Type().AssignableTo(out) {
		return reflect.Value{}, false
	}
	rv := reflect.New(out).Elem()
	rv.Set(d)
	return rv, true
}

func (b *binding) results(v reflect.Value) []reflect.Value {
	if b.shape.hasErr {
		return []reflect.Value{v, reflect.Zero(errorType)}
	}
	return []reflect.Value{v}
}

func (b *binding) fail(err error) []reflect.Value {
	errv := reflect.New(errorType).Elem()
	errv.Set(reflect.ValueOf(err))
	return []reflect.Value{reflect.Zero(b.shape.out), errv}
}

func (b *binding) trace(msg string, key cache.Key) {
	if !b.debug {
		return
	}
	b.logger.Debug(msg,
		zap.String("func", b.fnName),
		zap.String("strategy", b.name),
		zap.Any("key", key),
	)
}
