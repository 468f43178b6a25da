package nethttp

import "errors"

var (
	ErrNilDispatcher = errors.New("nethttp: dispatcher is required")
	ErrReadBody      = errors.New("nethttp: failed to read request body")
	ErrWriteBody     = errors.New("nethttp: failed to write response body")
)
