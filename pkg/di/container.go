package di

import (
	"github.com/goliatone/go-memoize/cache"
	"github.com/goliatone/go-memoize/memoize"
	"github.com/goliatone/go-memoize/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
)

// Container holds the components shared by memoized functions and cached
// repositories: the cache factory, the key serializer and any extra memoize
// options such as a logger.
type Container struct {
	factory    cache.Factory
	serializer cache.Serializer
	config     cache.Config
	options    []memoize.Option
}

// NewContainer creates a new DI container with the provided cache configuration.
// Every memoized function gets its own TTL store built from config. opts are
// applied after the container defaults and can override them.
func NewContainer(config cache.Config, opts ...memoize.Option) (*Container, error) {
	factory, err := cache.NewTTLFactory(config)
	if err != nil {
		return nil, err
	}

	return &Container{
		factory:    factory,
		serializer: cache.NewDefaultSerializer(),
		config:     config,
		options:    append([]memoize.Option(nil), opts...),
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...memoize.Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// CacheFactory returns the factory used for every memoized function.
func (c *Container) CacheFactory() cache.Factory {
	return c.factory
}

// Serializer returns the key serializer shared by the container.
func (c *Container) Serializer() cache.Serializer {
	return c.serializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Options returns the memoize options the container applies, defaults first.
func (c *Container) Options() []memoize.Option {
	opts := make([]memoize.Option, 0, len(c.options)+2)
	opts = append(opts, memoize.WithCache(c.factory), memoize.WithSerializer(c.serializer))
	return append(opts, c.options...)
}

// Memoize wraps fn using the container configuration. opts override the
// container options for this function only.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
func Memoize[F any](container *Container, fn F, opts ...memoize.Option) (F, error) {
	return memoize.New(fn, append(container.Options(), opts...)...)
}

// NewCachedRepository creates a cached repository that wraps the provided base repository.
// Example: NewCachedRepository[User](container, baseUserRepository)
func NewCachedRepository[T any](container *Container, base repository.Repository[T]) (*repositorycache.CachedRepository[T], error) {
	return repositorycache.New(base, container.Options()...)
}
