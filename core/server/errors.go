package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server address is required")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrListen               = errors.New("failed to listen")
)
