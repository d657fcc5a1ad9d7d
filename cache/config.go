package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-memoize/internal/cacheinfra"
	"github.com/redis/go-redis/v9"
)

// Config exposes the TTL store configuration for consumers of the cache package.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration

	// Namespace turns the store into a storage adapter. Memoized functions
	// bound to it run their cache operations through the async strategies.
	Namespace string
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewTTLStore constructs a sturdyc backed store using the provided configuration.
func NewTTLStore(cfg Config) (*cacheinfra.TTLStore, error) {
	return cacheinfra.NewTTLStore(cfg.toInternal())
}

// NewTTLFactory returns a Factory creating a separate TTL store per memoized function.
func NewTTLFactory(cfg Config) (Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return FactoryFunc(func() (Cache, error) {
		return NewTTLStore(cfg)
	}), nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		Namespace:          c.Namespace,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
		Namespace:          cfg.Namespace,
	}
}

// RistrettoConfig configures the cost bounded store.
type RistrettoConfig = cacheinfra.RistrettoConfig

// DefaultRistrettoConfig returns the default ristretto sizing.
func DefaultRistrettoConfig() RistrettoConfig {
	return cacheinfra.DefaultRistrettoConfig()
}

// NewRistrettoStore constructs a ristretto backed store.
func NewRistrettoStore(cfg RistrettoConfig) (*cacheinfra.CostStore, error) {
	return cacheinfra.NewCostStore(cfg)
}

// NewRistrettoFactory returns a Factory creating a ristretto store per memoized function.
func NewRistrettoFactory(cfg RistrettoConfig) (Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return FactoryFunc(func() (Cache, error) {
		return NewRistrettoStore(cfg)
	}), nil
}

// RedisConfig configures the redis store.
type RedisConfig = cacheinfra.RedisConfig

// NewRedisStore connects a redis store. Values are msgpack encoded and read
// back as Encoded.
func NewRedisStore(cfg RedisConfig) (*cacheinfra.RedisStore, error) {
	return cacheinfra.NewRedisStore(cfg)
}

// NewRedisStoreWithClient wraps an existing redis client.
func NewRedisStoreWithClient(rdb *redis.Client, namespace string, ttl time.Duration) *cacheinfra.RedisStore {
	return cacheinfra.NewRedisStoreWithClient(rdb, namespace, ttl)
}

// NewRedisFactory returns a Factory sharing one client across memoized
// functions. Each function gets its own key prefix under cfg.Namespace so
// equal argument lists of different functions do not collide.
func NewRedisFactory(cfg RedisConfig) (Factory, error) {
	store, err := cacheinfra.NewRedisStore(cfg)
	if err != nil {
		return nil, err
	}
	base := store.Options().Namespace
	var seq atomic.Int64
	return FactoryFunc(func() (Cache, error) {
		return store.WithNamespace(fmt.Sprintf("%s:%d", base, seq.Add(1))), nil
	}), nil
}
