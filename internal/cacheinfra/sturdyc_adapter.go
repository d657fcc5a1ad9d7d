package cacheinfra

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc backed TTL store.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the default time-to-live for cached entries.
	// After this duration, entries are considered expired.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	// Default: 10 (evict 10% of entries)
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration

	// Namespace, when set, makes the store present itself as a storage
	// adapter. Memoized functions bound to it use the async strategies.
	Namespace string
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EvictionInterval:   0, // Use default
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included in the options.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Nanosecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid ttl store config")
	}
	return nil
}

// TTLStore keeps memoized values in a sturdyc client. Entries expire after
// the configured TTL and the client evicts a share of entries when full.
type TTLStore struct {
	client    *sturdyc.Client[any]
	namespace string
}

// NewTTLStore validates the configuration and initializes a sturdyc client.
//
// Capacity, NumShards, TTL, EvictionPercentage are passed to sturdyc.New(),
// the remaining options are applied via ToSturdycOptions().
func NewTTLStore(cfg Config) (*TTLStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &TTLStore{client: client, namespace: cfg.Namespace}, nil
}

// Get returns the value stored under key, if present and not expired.
func (s *TTLStore) Get(_ context.Context, key any) (any, bool, error) {
	v, ok := s.client.Get(KeyString(key))
	return v, ok, nil
}

// Set stores value under key using the store wide TTL.
func (s *TTLStore) Set(_ context.Context, key any, value any) error {
	s.client.Set(KeyString(key), value)
	return nil
}

// Has reports whether key holds a live entry.
func (s *TTLStore) Has(_ context.Context, key any) (bool, error) {
	_, ok := s.client.Get(KeyString(key))
	return ok, nil
}

// Delete removes a single entry from the store.
func (s *TTLStore) Delete(_ context.Context, key any) error {
	s.client.Delete(KeyString(key))
	return nil
}

// Clear removes every entry currently held by the store.
func (s *TTLStore) Clear(_ context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}

// Size returns the number of entries in the store.
func (s *TTLStore) Size() int {
	return s.client.Size()
}

// Options exposes the storage adapter shape. An empty namespace means the
// store is a plain in-process cache.
func (s *TTLStore) Options() StoreOptions {
	return StoreOptions{Namespace: s.namespace}
}
