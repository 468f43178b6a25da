package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode"
)

const (
	MaxKeySize   = 512
	MaxValueSize = 25 << 20
	MinTTL       = 60 * time.Second
)

// Handle validates keys, values and TTLs before delegating to a Store.
// A Handle is safe for concurrent use when its Store is.
type Handle struct {
	store Store
}

// NewHandle wraps store.
func NewHandle(store Store) *Handle {
	return &Handle{store: store}
}

// Store returns the underlying store.
func (h *Handle) Store() Store {
	return h.store
}

func (h *Handle) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	return h.store.GetBytes(ctx, key)
}

func (h *Handle) PutBytes(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}
	return h.store.PutBytes(ctx, key, value)
}

func (h *Handle) PutBytesWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}
	return h.store.PutBytesWithTTL(ctx, key, value, ttl)
}

func (h *Handle) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	return h.store.Exists(ctx, key)
}

func (h *Handle) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return h.store.Delete(ctx, key)
}

// ListKeys returns every key starting with prefix. The prefix is validated
// like a key.
func (h *Handle) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if err := validateKey(prefix); err != nil {
		return nil, err
	}
	return h.store.ListKeys(ctx, prefix)
}

// Get decodes the JSON value stored under key. ok is false when the key is
// missing.
func Get[T any](ctx context.Context, h *Handle, key string) (v T, ok bool, err error) {
	data, ok, err := h.GetBytes(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return v, true, nil
}

// GetOr is Get with a fallback for missing keys.
func GetOr[T any](ctx context.Context, h *Handle, key string, fallback T) (T, error) {
	v, ok, err := Get[T](ctx, h, key)
	if err != nil {
		return fallback, err
	}
	if !ok {
		return fallback, nil
	}
	return v, nil
}

// Put stores v under key as JSON.
func Put[T any](ctx context.Context, h *Handle, key string, v T) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return h.PutBytes(ctx, key, data)
}

// PutWithTTL stores v under key as JSON, expiring after ttl.
func PutWithTTL[T any](ctx context.Context, h *Handle, key string, v T, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return h.PutBytesWithTTL(ctx, key, data, ttl)
}

// Update reads key (fallback if missing), applies fn and writes the result
// back. It is a read-modify-write, not an atomic operation.
func Update[T any](ctx context.Context, h *Handle, key string, fallback T, fn func(T) T) (T, error) {
	current, err := GetOr(ctx, h, key, fallback)
	if err != nil {
		return current, err
	}
	next := fn(current)
	if err := Put(ctx, h, key, next); err != nil {
		return current, err
	}
	return next, nil
}

func validateKey(key string) error {
	if len(key) > MaxKeySize {
		return fmt.Errorf("%w: key length %d exceeds limit of %d bytes", ErrValidation, len(key), MaxKeySize)
	}
	if key == "." || key == ".." {
		return fmt.Errorf("%w: key cannot be exactly '.' or '..'", ErrValidation)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: key contains invalid control characters", ErrValidation)
		}
	}
	return nil
}

func validateValue(value []byte) error {
	if len(value) > MaxValueSize {
		return fmt.Errorf("%w: value size %d exceeds limit of 25MB", ErrValidation, len(value))
	}
	return nil
}

func validateTTL(ttl time.Duration) error {
	if ttl < MinTTL {
		return fmt.Errorf("%w: TTL %s is less than minimum of at least 60 seconds", ErrValidation, ttl)
	}
	return nil
}
