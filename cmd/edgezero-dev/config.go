package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/dmitrymomot/edgezero/adapter/nethttp"
	"github.com/dmitrymomot/edgezero/core/config"
	"github.com/dmitrymomot/edgezero/core/kv"
	"github.com/dmitrymomot/edgezero/core/logger"
)

// Config is the dev server configuration. Environment variables are read
// first, then the optional TOML file, then command-line flags.
type Config struct {
	Adapter   nethttp.Config  `toml:"adapter"`
	Redis     kv.RedisConfig  `toml:"redis"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
	RateLimit RateLimitConfig `toml:"rate_limit"`

	// Upstream is the base URL the demo /proxy/* route forwards to.
	Upstream string `env:"EDGE_UPSTREAM_URL" toml:"upstream"`
	// UseRedis switches the KV store from memory to Redis.
	UseRedis bool `env:"EDGE_KV_REDIS" envDefault:"false" toml:"kv_redis"`
	// CORSOrigins enables CORS on the demo JSON routes.
	CORSOrigins []string `env:"EDGE_CORS_ORIGINS" toml:"cors_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" toml:"level"`
	Format string `env:"LOG_FORMAT" envDefault:"text" toml:"format"`
}

// MetricsConfig holds Prometheus settings. Metrics are served on their own
// listener so the app's route table stays untouched.
type MetricsConfig struct {
	Enabled bool   `env:"EDGE_METRICS_ENABLED" envDefault:"true" toml:"enabled"`
	Addr    string `env:"EDGE_METRICS_ADDR" envDefault:":9090" toml:"addr"`
	Path    string `env:"EDGE_METRICS_PATH" envDefault:"/metrics" toml:"path"`
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `env:"EDGE_RATE_LIMIT_ENABLED" envDefault:"false" toml:"enabled"`
	RequestsPerSecond float64 `env:"EDGE_RATE_LIMIT_RPS" envDefault:"10" toml:"requests_per_second"`
	Burst             int     `env:"EDGE_RATE_LIMIT_BURST" envDefault:"20" toml:"burst"`
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	if err := config.LoadFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Metrics.Path == "" || !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return Config{}, fmt.Errorf("metrics path must start with '/': %q", cfg.Metrics.Path)
	}
	return cfg, nil
}

func (cfg Config) upstreamURL() (*url.URL, error) {
	if cfg.Upstream == "" {
		return nil, nil
	}
	u, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("upstream url must be absolute: %q", cfg.Upstream)
	}
	return u, nil
}

func newLogger(cfg LogConfig) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := []logger.Option{logger.WithLevel(level), logger.WithOutput(os.Stdout)}
	switch strings.ToLower(cfg.Format) {
	case "json":
		opts = append(opts, logger.WithJSONFormatter())
	case "", "text":
		opts = append(opts, logger.WithTextFormatter())
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return logger.New(opts...), nil
}
