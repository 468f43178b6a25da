package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/edgezero/adapter/nethttp"
	"github.com/dmitrymomot/edgezero/core/app"
	"github.com/dmitrymomot/edgezero/core/health"
	"github.com/dmitrymomot/edgezero/core/kv"
	"github.com/dmitrymomot/edgezero/core/metrics"
	"github.com/dmitrymomot/edgezero/core/server"
	"github.com/dmitrymomot/edgezero/internal/demo"
	"github.com/dmitrymomot/edgezero/middleware"
)

// ServeCmd runs the demo app.
type ServeCmd struct {
	Addr     string `kong:"short='a',help='Listen address (overrides config).'"`
	Upstream string `kong:"help='Upstream base URL for /proxy/* (overrides config).'"`
	Redis    bool   `kong:"help='Use Redis for the KV store.'"`
}

// Run loads configuration, builds the app and serves it until SIGINT or
// SIGTERM.
func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	cli.apply(&cfg)
	c.apply(&cfg)

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, log)
}

func (c *ServeCmd) apply(cfg *Config) {
	if c.Addr != "" {
		cfg.Adapter.Server.Addr = c.Addr
	}
	if c.Upstream != "" {
		cfg.Upstream = c.Upstream
	}
	if c.Redis {
		cfg.UseRedis = true
	}
}

func (c *CLI) apply(cfg *Config) {
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
}

func serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	store, probes, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	hooks, err := buildHooks(cfg, log)
	if err != nil {
		return err
	}
	hooks.Probes = probes
	a := app.Build(hooks, app.WithLogger(log), app.WithKV(kv.NewHandle(store)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return nethttp.Serve(ctx, a, cfg.Adapter)
	})
	if hooks.Metrics != nil {
		srv := server.New(cfg.Metrics.Addr, server.WithLogger(log))
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, hooks.Metrics.Handler())
		log.InfoContext(ctx, "metrics enabled", slog.String("addr", cfg.Metrics.Addr), slog.String("path", cfg.Metrics.Path))
		g.Go(srv.Run(ctx, mux))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("dev server stopped")
	return nil
}

func buildHooks(cfg Config, log *slog.Logger) (demo.Hooks, error) {
	upstream, err := cfg.upstreamURL()
	if err != nil {
		return demo.Hooks{}, err
	}
	hooks := demo.Hooks{
		Logger:      log,
		Upstream:    upstream,
		BodyLimit:   cfg.Adapter.MaxBufferedBody,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.Metrics.Enabled {
		hooks.Metrics = metrics.New()
	}
	if cfg.RateLimit.Enabled {
		hooks.Limiter = middleware.NewMemoryLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		log.Info("rate limiter enabled",
			slog.Float64("rps", cfg.RateLimit.RequestsPerSecond),
			slog.Int("burst", cfg.RateLimit.Burst),
		)
	}
	return hooks, nil
}

func openStore(ctx context.Context, cfg Config) (kv.Store, []health.Check, func(), error) {
	if !cfg.UseRedis {
		return kv.NewMemoryStore(), nil, func() {}, nil
	}
	client, err := kv.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	store := kv.NewRedisStoreFromConfig(client, cfg.Redis)
	probes := []health.Check{kv.RedisHealthcheck(client)}
	return store, probes, func() { _ = client.Close() }, nil
}
