// Package kv provides the key-value collaborator available to handlers.
//
// A Store is a byte-oriented backend. Handle wraps a Store and enforces the
// portable limits every backend shares: keys up to MaxKeySize bytes that are
// not "." or ".." and contain no control characters, values up to
// MaxValueSize bytes, and TTLs of at least MinTTL. The generic helpers Get,
// GetOr, Put, PutWithTTL and Update store JSON-encoded values through a
// Handle.
//
// Two stores are provided. MemoryStore keeps entries in process and is
// meant for tests and local development. RedisStore uses go-redis and
// namespaces its keys:
//
//	client, err := kv.ConnectRedis(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	handle := kv.NewHandle(kv.NewRedisStoreFromConfig(client, cfg))
//
//	count, err := kv.Update(ctx, handle, "visits", 0, func(n int) int { return n + 1 })
//
// ToEdgeError maps kv failures onto HTTP-facing errors: missing keys are
// 404, validation and serialization failures are 400, anything else is 500.
package kv
