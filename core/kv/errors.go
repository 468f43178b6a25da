package kv

import "errors"

var (
	ErrNotFound      = errors.New("key not found")
	ErrUnavailable   = errors.New("kv store unavailable")
	ErrValidation    = errors.New("validation error")
	ErrSerialization = errors.New("serialization error")
	ErrNoStore       = errors.New("no kv store configured")
)

// Redis connection errors.
var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)
