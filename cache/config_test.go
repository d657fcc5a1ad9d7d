package cache

import (
	"context"
	"testing"
	"time"
)

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected default TTL of 5m, got %v", cfg.TTL)
	}

	cfg.Capacity = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero capacity")
	}
}

func TestNewTTLFactory(t *testing.T) {
	if _, err := NewTTLFactory(Config{}); err == nil {
		t.Fatal("expected error for invalid config")
	}

	cfg := DefaultConfig()
	cfg.Namespace = "keyv"
	f, err := NewTTLFactory(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := f.Create()
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	if !IsAsync(c) {
		t.Error("expected namespaced TTL store to be async")
	}

	ctx := context.Background()
	_ = c.Set(ctx, 4, "four")
	if v, ok, _ := c.Get(ctx, 4); !ok || v != "four" {
		t.Errorf("expected hit, got %v (%v)", v, ok)
	}
}

func TestNewRistrettoFactory(t *testing.T) {
	f, err := NewRistrettoFactory(DefaultRistrettoConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := f.Create()
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	if IsAsync(c) {
		t.Error("expected ristretto store to be sync")
	}

	ctx := context.Background()
	_ = c.Set(ctx, "k", 1)
	if v, ok, _ := c.Get(ctx, "k"); !ok || v != 1 {
		t.Errorf("expected hit, got %v (%v)", v, ok)
	}
}

func TestNewRedisFactory_InvalidConfig(t *testing.T) {
	if _, err := NewRedisFactory(RedisConfig{}); err == nil {
		t.Error("expected error for missing address")
	}
}
