package kv_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/kv"
)

// runStoreContract checks the behaviour every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.PutBytes(ctx, "k", []byte("v")))
		v, ok, err := s.GetBytes(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), v)
	})

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.GetBytes(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.PutBytes(ctx, "k", []byte("first")))
		require.NoError(t, s.PutBytes(ctx, "k", []byte("second")))
		v, _, err := s.GetBytes(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), v)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.PutBytes(ctx, "k", []byte("v")))
		require.NoError(t, s.Delete(ctx, "k"))
		_, ok, err := s.GetBytes(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, s.Delete(ctx, "nope"))
	})

	t.Run("list keys by prefix sorted", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"a:3", "b:1", "a:1", "a:2", "a:10"} {
			require.NoError(t, s.PutBytes(ctx, k, []byte("v")))
		}
		keys, err := s.ListKeys(ctx, "a:")
		require.NoError(t, err)
		assert.Equal(t, []string{"a:1", "a:10", "a:2", "a:3"}, keys)
	})

	t.Run("list keys empty", func(t *testing.T) {
		s := newStore(t)
		keys, err := s.ListKeys(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("exists", func(t *testing.T) {
		s := newStore(t)
		ok, err := s.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, s.PutBytes(ctx, "k", []byte("v")))
		ok, err = s.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMemoryStoreContract(t *testing.T) {
	t.Parallel()
	runStoreContract(t, func(*testing.T) kv.Store { return kv.NewMemoryStore() })
}

func TestRedisStoreContract(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	runStoreContract(t, func(t *testing.T) kv.Store {
		client, err := kv.ConnectRedis(context.Background(), kv.RedisConfig{
			ConnectionURL:  url,
			RetryAttempts:  1,
			ConnectTimeout: 5 * time.Second,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		return kv.NewRedisStore(client, kv.WithNamespace("edgezero-test:"+t.Name()+":"))
	})
}

func TestConnectRedisConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := kv.ConnectRedis(context.Background(), kv.RedisConfig{})
	assert.ErrorIs(t, err, kv.ErrEmptyConnectionURL)

	_, err = kv.ConnectRedis(context.Background(), kv.RedisConfig{ConnectionURL: "http://localhost"})
	assert.ErrorIs(t, err, kv.ErrFailedToParseRedisConnString)
}

func TestMemoryStoreTTL(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		now = time.Unix(1_000, 0)
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	ctx := context.Background()
	s := kv.NewMemoryStore(kv.WithClock(clock))
	require.NoError(t, s.PutBytesWithTTL(ctx, "session", []byte("x"), time.Minute))
	require.NoError(t, s.PutBytes(ctx, "forever", []byte("y")))

	ok, err := s.Exists(ctx, "session")
	require.NoError(t, err)
	assert.True(t, ok)

	advance(time.Minute)

	ok, err = s.Exists(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := s.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"forever"}, keys)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := kv.NewMemoryStore().PutBytes(ctx, "k", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := kv.NewHandle(kv.NewMemoryStore())

	tests := []struct {
		name string
		call func() error
	}{
		{"key too long", func() error { return h.PutBytes(ctx, strings.Repeat("k", kv.MaxKeySize+1), nil) }},
		{"dot key", func() error { return h.PutBytes(ctx, ".", nil) }},
		{"dot dot key", func() error { _, err := h.Exists(ctx, ".."); return err }},
		{"control char", func() error { return h.Delete(ctx, "a\nb") }},
		{"value too large", func() error { return h.PutBytes(ctx, "big", make([]byte, kv.MaxValueSize+1)) }},
		{"ttl too short", func() error { return h.PutBytesWithTTL(ctx, "k", nil, 59*time.Second) }},
		{"typed ttl too short", func() error { return kv.PutWithTTL(ctx, h, "k", 1, time.Second) }},
		{"prefix validated", func() error { _, err := h.ListKeys(ctx, ".."); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.call(), kv.ErrValidation)
		})
	}

	require.NoError(t, h.PutBytes(ctx, strings.Repeat("k", kv.MaxKeySize), []byte("ok")))
	require.NoError(t, h.PutBytesWithTTL(ctx, "ttl", []byte("ok"), kv.MinTTL))
}

func TestTypedHelpers(t *testing.T) {
	t.Parallel()

	type profile struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	ctx := context.Background()
	h := kv.NewHandle(kv.NewMemoryStore())

	_, ok, err := kv.Get[profile](ctx, h, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put(ctx, h, "user:1", profile{Name: "ada", Age: 36}))
	got, ok, err := kv.Get[profile](ctx, h, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, profile{Name: "ada", Age: 36}, got)

	n, err := kv.GetOr(ctx, h, "counter", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for range 3 {
		n, err = kv.Update(ctx, h, "counter", 0, func(v int) int { return v + 1 })
		require.NoError(t, err)
	}
	assert.Equal(t, 3, n)

	require.NoError(t, h.PutBytes(ctx, "bad", []byte("{not json")))
	_, _, err = kv.Get[profile](ctx, h, "bad")
	assert.ErrorIs(t, err, kv.ErrSerialization)
}

func TestToEdgeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", &kv.NotFoundError{Key: "user:1"}, http.StatusNotFound, "kv key: user:1"},
		{"validation", kv.NewHandle(kv.NewMemoryStore()).Delete(context.Background(), "."), http.StatusBadRequest, "kv validation error: key cannot be exactly '.' or '..'"},
		{"unavailable", kv.ErrUnavailable, http.StatusInternalServerError, "internal error: kv store unavailable"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ee := kv.ToEdgeError(tt.err)
			require.NotNil(t, ee)
			assert.Equal(t, tt.status, ee.Status())
			assert.Equal(t, tt.message, ee.Message())
		})
	}

	assert.Nil(t, kv.ToEdgeError(nil))
	assert.Equal(t, edgeerr.KindNotFound, kv.ToEdgeError(kv.ErrNotFound).Kind())
}
