package server

import "time"

const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 0 // streamed responses may run long
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
)
