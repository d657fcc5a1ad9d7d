package memoize

import (
	"reflect"
	"runtime"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-memoize/cache"
)

// Strategy binds fn to a cache built from cfg and returns a function value of
// the same type as fn.
type Strategy func(fn reflect.Value, cfg Config) (reflect.Value, error)

type family int

const (
	familyAuto family = iota
	familyMonadic
	familyVariadic
)

// Auto picks the invocation variant from the function and its cache. Calls
// go through the async variants when the cache is async or the function
// returns a deferred value. Functions with exactly one non context,
// non variadic parameter are keyed on that argument, everything else on the
// serialized argument list.
func Auto(fn reflect.Value, cfg Config) (reflect.Value, error) {
	return bind(fn, cfg, familyAuto)
}

// MonadicStrategy keys every call on its first argument, regardless of
// arity. Sync or async dispatch is still detected.
func MonadicStrategy(fn reflect.Value, cfg Config) (reflect.Value, error) {
	return bind(fn, cfg, familyMonadic)
}

// VariadicStrategy keys every call on the serialized argument list.
func VariadicStrategy(fn reflect.Value, cfg Config) (reflect.Value, error) {
	return bind(fn, cfg, familyVariadic)
}

func bind(fn reflect.Value, cfg Config, fam family) (reflect.Value, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return reflect.Value{}, goerrors.Wrap(ErrNotAFunction, goerrors.CategoryBadInput, "bind")
	}

	sh, err := analyze(fn.Type())
	if err != nil {
		return reflect.Value{}, err
	}

	c, err := cfg.Cache.Create()
	if err != nil {
		return reflect.Value{}, goerrors.Wrap(err, goerrors.CategoryExternal, "create memoize cache")
	}
	if c == nil {
		return reflect.Value{}, goerrors.New("cache factory returned a nil cache", goerrors.CategoryInternal)
	}

	async := cache.IsAsync(c) || sh.deferred()

	monadic := fam == familyMonadic
	if fam == familyAuto {
		monadic = sh.arity == 1 && !sh.variadic
	}

	b := &binding{
		fn:         fn,
		shape:      sh,
		cache:      c,
		serializer: cfg.Serializer,
		logger:     cfg.Logger,
		debug:      cfg.Debug,
		fnName:     funcName(fn),
	}

	var impl func([]reflect.Value) []reflect.Value
	switch {
	case monadic && async:
		b.name = "monadic-async"
		impl = b.monadicAsync
	case monadic:
		b.name = "monadic-sync"
		impl = b.monadicSync
	case async:
		b.name = "variadic-async"
		impl = b.variadicAsync
	default:
		b.name = "variadic-sync"
		impl = b.variadicSync
	}

	return reflect.MakeFunc(fn.Type(), impl), nil
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		return f.Name()
	}
	return fn.Type().String()
}
