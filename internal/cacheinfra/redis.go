package cacheinfra

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultNamespace prefixes redis keys when no namespace is configured.
const DefaultNamespace = "memoize"

// RedisConfig configures the redis backed store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string

	// TTL applies to every entry. Zero means entries never expire.
	TTL time.Duration
}

// Validate checks the configuration values.
func (c RedisConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid redis store config")
	}
	return nil
}

// RedisStore is an external store. Values are msgpack encoded on Set and
// returned as Encoded on Get. Every operation goes over the network, so the
// store declares itself asynchronous.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore opens a client for cfg.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(rdb, cfg.Namespace, cfg.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(rdb *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{rdb: rdb, namespace: namespace, ttl: ttl}
}

// WithNamespace returns a store sharing the client under another key prefix.
func (s *RedisStore) WithNamespace(namespace string) *RedisStore {
	return NewRedisStoreWithClient(s.rdb, namespace, s.ttl)
}

func (s *RedisStore) key(key any) string {
	return s.namespace + ":" + KeyString(key)
}

// Get returns (nil, false, nil) on a miss.
func (s *RedisStore) Get(ctx context.Context, key any) (any, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return Encoded(val), true, nil
}

// Set encodes value with msgpack and stores it with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key any, value any) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "encode value for redis")
	}
	return s.rdb.Set(ctx, s.key(key), payload, s.ttl).Err()
}

// Has reports whether key exists.
func (s *RedisStore) Has(ctx context.Context, key any) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key any) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// Clear removes every key under the store namespace.
func (s *RedisStore) Clear(ctx context.Context) error {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.namespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Async reports that every operation performs network I/O.
func (s *RedisStore) Async() bool {
	return true
}

// Options exposes the namespace of the store.
func (s *RedisStore) Options() StoreOptions {
	return StoreOptions{Namespace: s.namespace}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
