package cacheinfra

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// RistrettoConfig configures the cost bounded store.
type RistrettoConfig struct {
	// MaxCost is the total cost the store can hold. Every entry costs 1.
	MaxCost int64

	// NumCounters is the number of keys tracked for admission. Ristretto
	// recommends ten times the expected number of entries.
	NumCounters int64

	// BufferItems is the size of the Get buffers.
	BufferItems int64

	// TTL applies to every entry. Zero means entries never expire.
	TTL time.Duration
}

// DefaultRistrettoConfig returns a store sized for about a hundred thousand entries.
func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		MaxCost:     100_000,
		NumCounters: 1_000_000,
		BufferItems: 64,
	}
}

// Validate checks the configuration values.
func (c RistrettoConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.MaxCost, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.NumCounters, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.BufferItems, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid ristretto store config")
	}
	return nil
}

// CostStore is an in-process store backed by ristretto.
type CostStore struct {
	rc  *ristretto.Cache[string, any]
	ttl time.Duration
}

// NewCostStore creates a ristretto backed store.
func NewCostStore(cfg RistrettoConfig) (*CostStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "create ristretto cache")
	}

	return &CostStore{rc: rc, ttl: cfg.TTL}, nil
}

// Get retrieves a value by key.
func (s *CostStore) Get(_ context.Context, key any) (any, bool, error) {
	v, ok := s.rc.Get(KeyString(key))
	return v, ok, nil
}

// Set stores value under key and waits for the write buffers to drain so
// the entry is visible to the next Get.
func (s *CostStore) Set(_ context.Context, key any, value any) error {
	s.rc.SetWithTTL(KeyString(key), value, 1, s.ttl)
	s.rc.Wait()
	return nil
}

// Delete removes key from the store.
func (s *CostStore) Delete(_ context.Context, key any) error {
	s.rc.Del(KeyString(key))
	return nil
}

// Clear drops every entry.
func (s *CostStore) Clear(_ context.Context) error {
	s.rc.Clear()
	return nil
}

// Close stops the ristretto goroutines.
func (s *CostStore) Close() {
	s.rc.Close()
}
