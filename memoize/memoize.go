package memoize

import (
	"fmt"
	"reflect"

	goerrors "github.com/goliatone/go-errors"
)

// New wraps fn with a cache and returns a function of the same type. Calls
// with arguments seen before return the cached result without calling fn.
//
// fn must return R or (R, error). A leading context.Context parameter is
// forwarded to fn and to the cache but never becomes part of the key.
func New[F any](fn F, opts ...Option) (F, error) {
	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return NewWithConfig(fn, cfg)
}

// NewWithConfig is New with an explicit Config.
func NewWithConfig[F any](fn F, cfg Config) (F, error) {
	var zero F

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return zero, goerrors.Wrap(ErrNotAFunction, goerrors.CategoryBadInput, fmt.Sprintf("got %T", fn))
	}

	cfg = cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return zero, err
	}

	wrapped, err := cfg.Strategy(rv, cfg)
	if err != nil {
		return zero, err
	}

	out, ok := wrapped.Interface().(F)
	if !ok {
		return zero, goerrors.Wrap(ErrUnsupportedSignature, goerrors.CategoryInternal,
			fmt.Sprintf("strategy returned %s for %T", wrapped.Type(), fn))
	}
	return out, nil
}

// Memoize is New that panics on configuration errors.
//
//	fib := memoize.Memoize(func(n int) int { ... })
func Memoize[F any](fn F, opts ...Option) F {
	out, err := New(fn, opts...)
	if err != nil {
		panic(err)
	}
	return out
}

// Monadic memoizes fn keyed on its first argument only.
func Monadic[F any](fn F, opts ...Option) F {
	return Memoize(fn, append(opts[:len(opts):len(opts)], WithStrategy(MonadicStrategy))...)
}

// Variadic memoizes fn keyed on its whole argument list.
func Variadic[F any](fn F, opts ...Option) F {
	return Memoize(fn, append(opts[:len(opts):len(opts)], WithStrategy(VariadicStrategy))...)
}
