package memoize

import (
	"context"
	"fmt"
	"reflect"

	goerrors "github.com/goliatone/go-errors"
)

type resultKind int

const (
	kindPlain resultKind = iota
	kindChan
	kindFuture
	// kindDynamic results are interface typed. Whether the produced value is
	// deferred is only known at run time.
	kindDynamic
)

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	awaitableType = reflect.TypeOf((*Awaitable)(nil)).Elem()
)

// shape is the calling convention of a memoized function.
type shape struct {
	fnType   reflect.Type
	hasCtx   bool
	hasErr   bool
	variadic bool
	// arity counts parameters after the optional context. A variadic tail
	// counts as one.
	arity int

	out  reflect.Type
	kind resultKind
	// settledType is the type of the values kept in the cache.
	settledType reflect.Type
	future      futureType
}

func analyze(t reflect.Type) (*shape, error) {
	if t.Kind() != reflect.Func {
		return nil, goerrors.Wrap(ErrNotAFunction, goerrors.CategoryBadInput, t.String())
	}

	s := &shape{fnType: t, variadic: t.IsVariadic()}

	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
		s.hasErr = true
	default:
		return nil, goerrors.Wrap(ErrUnsupportedSignature, goerrors.CategoryBadInput,
			fmt.Sprintf("%s: results must be R or (R, error)", t))
	}

	s.hasCtx = t.NumIn() > 0 && t.In(0) == contextType
	s.arity = t.NumIn()
	if s.hasCtx {
		s.arity--
	}

	s.out = t.Out(0)
	s.settledType = s.out

	switch {
	case s.out.Kind() == reflect.Chan:
		if s.out.ChanDir()&reflect.RecvDir == 0 {
			return nil, goerrors.Wrap(ErrUnsupportedSignature, goerrors.CategoryBadInput,
				fmt.Sprintf("%s: send only channel result", t))
		}
		s.kind = kindChan
		s.settledType = s.out.Elem()
	case s.out.Implements(futureTypeIface):
		s.kind = kindFuture
		s.future = reflect.Zero(s.out).Interface().(futureType)
		s.settledType = s.future.valueType()
	case s.out.Kind() == reflect.Interface:
		s.kind = kindDynamic
	case s.out.Implements(awaitableType):
		return nil, goerrors.Wrap(ErrUnsupportedSignature, goerrors.CategoryBadInput,
			fmt.Sprintf("%s: deferred results must be *memoize.Future or a channel", t))
	}

	return s, nil
}

// deferred reports whether the static result type is a deferred value.
func (s *shape) deferred() bool {
	return s.kind == kindChan || s.kind == kindFuture
}

// split separates the invocation context from the key arguments.
func (s *shape) split(in []reflect.Value) (context.Context, []any) {
	ctx := context.Background()
	start := 0
	if s.hasCtx {
		start = 1
		if c, ok := in[0].Interface().(context.Context); ok && c != nil {
			ctx = c
		}
	}

	args := make([]any, 0, len(in)-start)
	for _, v := range in[start:] {
		args = append(args, v.Interface())
	}
	return ctx, args
}

// assign places a cached value into a new value of type t.
func assign(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	out := reflect.New(t).Elem()
	out.Set(rv)
	return out, true
}

// closedChan returns a channel of type chanType holding v, already closed.
func closedChan(chanType reflect.Type, v reflect.Value) reflect.Value {
	ch := reflect.MakeChan(reflect.ChanOf(reflect.BothDir, chanType.Elem()), 1)
	ch.Send(v)
	ch.Close()
	return ch.Convert(chanType)
}

// receive waits for the first value of ch.
func receive(ctx context.Context, ch reflect.Value) (any, error) {
	if ch.IsNil() {
		return nil, goerrors.Wrap(ErrClosedWithoutValue, goerrors.CategoryOperation, "nil channel")
	}

	chosen, v, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: ch},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	})
	if chosen == 1 {
		return nil, ctx.Err()
	}
	if !ok {
		return nil, goerrors.Wrap(ErrClosedWithoutValue, goerrors.CategoryOperation, ch.Type().String())
	}
	return v.Interface(), nil
}
