package kv

import (
	"context"
	"time"
)

// Store is a byte-oriented key-value backend. GetBytes reports a missing key
// with ok == false and a nil error. Deleting a missing key is not an error.
// ListKeys returns the matching keys sorted in lexical order.
type Store interface {
	GetBytes(ctx context.Context, key string) (value []byte, ok bool, err error)
	PutBytes(ctx context.Context, key string, value []byte) error
	PutBytesWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}
