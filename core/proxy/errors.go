package proxy

import "errors"

var (
	ErrInvalidTarget       = errors.New("invalid proxy target")
	ErrUpstream            = errors.New("upstream request failed")
	ErrNoClient            = errors.New("no proxy client configured")
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
)
