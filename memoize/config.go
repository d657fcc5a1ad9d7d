package memoize

import (
	"errors"
	"reflect"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-memoize/cache"
	"go.uber.org/zap"
)

// Config controls how a function is memoized. Absent fields are filled with
// defaults when the function is wrapped.
type Config struct {
	// Cache creates the store for each memoized function. Default: cache.DefaultFactory.
	Cache cache.Factory

	// Serializer builds keys for non primitive arguments. Default: cache.NewDefaultSerializer.
	Serializer cache.Serializer

	// Strategy binds the function to its cache. Default: Auto.
	Strategy Strategy

	// Debug logs a hit or miss entry for every call.
	Debug bool

	// Logger receives debug traces and backend warnings. Default: zap.NewNop,
	// or a development logger when Debug is set.
	Logger *zap.Logger
}

// Option configures a Config.
type Option func(*Config)

// WithCache sets the cache factory.
func WithCache(f cache.Factory) Option {
	return func(c *Config) {
		c.Cache = f
	}
}

// WithSharedCache makes every function wrapped with this option use c.
func WithSharedCache(c cache.Cache) Option {
	return func(cfg *Config) {
		cfg.Cache = cache.Shared(c)
	}
}

// WithSerializer sets the key serializer.
func WithSerializer(s cache.Serializer) Option {
	return func(c *Config) {
		c.Serializer = s
	}
}

// WithSerializerFunc sets the key serializer from a plain function.
func WithSerializerFunc(fn func(args []any) string) Option {
	return func(c *Config) {
		c.Serializer = cache.SerializerFunc(fn)
	}
}

// WithStrategy forces a strategy, see MonadicStrategy and VariadicStrategy.
func WithStrategy(s Strategy) Option {
	return func(c *Config) {
		c.Strategy = s
	}
}

// WithDebug enables hit and miss traces.
func WithDebug(on bool) Option {
	return func(c *Config) {
		c.Debug = on
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{}.resolve()
}

func (c Config) resolve() Config {
	if c.Cache == nil {
		c.Cache = cache.DefaultFactory()
	}
	if c.Serializer == nil {
		c.Serializer = cache.NewDefaultSerializer()
	}
	if c.Strategy == nil {
		c.Strategy = Auto
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
		if c.Debug {
			if l, err := zap.NewDevelopment(); err == nil {
				c.Logger = l
			}
		}
	}
	return c
}

// Validate reports fields holding typed nil values, such as a nil
// SerializerFunc, which resolve cannot replace.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Cache, validation.By(present)),
		validation.Field(&c.Serializer, validation.By(present)),
		validation.Field(&c.Strategy, validation.By(present)),
		validation.Field(&c.Logger, validation.By(present)),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid memoize config")
	}
	return nil
}

func present(value any) error {
	if value == nil {
		return errors.New("is required")
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Ptr, reflect.Interface, reflect.Map, reflect.Chan, reflect.Slice:
		if rv.IsNil() {
			return errors.New("is required")
		}
	}
	return nil
}
