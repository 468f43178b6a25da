package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" toml:"url"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3" toml:"retry_attempts"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s" toml:"-"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s" toml:"-"`
	ScanBatchSize  int           `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000" toml:"scan_batch_size"`
	Namespace      string        `env:"REDIS_KV_NAMESPACE" envDefault:"edgezero:" toml:"namespace"`
}

// ConnectRedis parses cfg.ConnectionURL and pings the server until it
// answers, retrying with a linearly growing interval.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (redis.UniversalClient, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client := redis.NewClient(opts)
	attempts := max(cfg.RetryAttempts, 1)

	var lastErr error
	for i := range attempts {
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval * time.Duration(i+1)):
		}
	}
	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

// RedisHealthcheck returns a probe pinging client.
func RedisHealthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// RedisStore is a Store backed by Redis. Keys are stored under a namespace
// prefix which ListKeys strips again.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	batchSize int64
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithNamespace prefixes every key with ns.
func WithNamespace(ns string) RedisOption {
	return func(s *RedisStore) {
		s.namespace = ns
	}
}

// WithScanBatchSize sets the COUNT hint used while listing keys.
func WithScanBatchSize(n int) RedisOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.batchSize = int64(n)
		}
	}
}

// NewRedisStore returns a store using client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, batchSize: 1000}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisStoreFromConfig applies the namespace and batch size from cfg.
func NewRedisStoreFromConfig(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	return NewRedisStore(client, WithNamespace(cfg.Namespace), WithScanBatchSize(cfg.ScanBatchSize))
}

func (s *RedisStore) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, s.wrap(err)
	}
	return v, true, nil
}

func (s *RedisStore) PutBytes(ctx context.Context, key string, value []byte) error {
	return s.wrap(s.client.Set(ctx, s.namespace+key, value, 0).Err())
}

func (s *RedisStore) PutBytesWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.wrap(s.client.Set(ctx, s.namespace+key, value, ttl).Err())
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.wrap(s.client.Del(ctx, s.namespace+key).Err())
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.namespace+key).Result()
	if err != nil {
		return false, s.wrap(err)
	}
	return n > 0, nil
}

// ListKeys walks the keyspace with SCAN and returns the keys sorted. SCAN may
// report a key twice; duplicates are dropped.
func (s *RedisStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	match := escapeGlob(s.namespace+prefix) + "*"
	keys := make([]string, 0)
	iter := s.client.Scan(ctx, 0, match, s.batchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, s.wrap(err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

func (s *RedisStore) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
