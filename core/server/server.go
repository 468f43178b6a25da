package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/edgezero/core/logger"
)

// Server wraps http.Server with graceful shutdown. Safe for concurrent use.
type Server struct {
	mu             sync.RWMutex
	addr           string
	listener       net.Listener
	server         *http.Server
	logger         *slog.Logger
	shutdown       time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	maxHeaderBytes int
	running        bool
}

// New creates a Server for addr with a no-op logger by default.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:           addr,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdown:       DefaultShutdownTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		idleTimeout:    DefaultIdleTimeout,
		maxHeaderBytes: DefaultMaxHeaderBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Running reports whether the server is serving.
func (s *Server) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start binds and serves h until ctx is done or serving fails. It returns
// ctx.Err() on cancellation; call Stop to shut down gracefully.
func (s *Server) Start(ctx context.Context, h http.Handler) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s: %w", ErrListen, s.addr, err)
	}

	s.listener = ln
	s.running = true
	s.server = &http.Server{
		Handler:           h,
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       s.idleTimeout,
		MaxHeaderBytes:    s.maxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting server", logger.Component("server"), slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop gracefully shuts the server down within the shutdown timeout.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server", logger.Component("server"), slog.Duration("timeout", s.shutdown))

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.running = false
	if err != nil {
		s.logger.Error("server shutdown error", logger.Component("server"), logger.Error(err))
		return err
	}
	s.logger.Info("server shutdown complete", logger.Component("server"))
	return nil
}

// Run returns an errgroup-compatible function that serves h and shuts the
// server down when ctx is cancelled.
func (s *Server) Run(ctx context.Context, h http.Handler) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() { errCh <- s.Start(ctx, h) }()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
		}

		if err := s.Stop(); err != nil {
			s.logger.Error("failed to stop server", logger.Component("server"), logger.Error(err))
		}
		return nil
	}
}
