package nethttp

import (
	"time"

	"github.com/dmitrymomot/edgezero/core/server"
)

// DefaultMaxBufferedBody bounds buffered JSON and form bodies.
const DefaultMaxBufferedBody int64 = 4 << 20

// Config holds adapter settings loaded from EDGE_* variables plus the
// embedded SERVER_* settings.
type Config struct {
	Server server.Config `toml:"server"`

	// MaxBufferedBody bounds JSON and form bodies read into memory.
	MaxBufferedBody int64 `env:"EDGE_MAX_BUFFERED_BODY" envDefault:"4194304" toml:"max_buffered_body"`
	// ProxyEnabled installs an HTTP proxy client when the app has none.
	ProxyEnabled bool `env:"EDGE_PROXY_ENABLED" envDefault:"true" toml:"proxy_enabled"`
	// ProxyTimeout bounds each upstream request.
	ProxyTimeout time.Duration `env:"EDGE_PROXY_TIMEOUT" envDefault:"30s" toml:"-"`
	// ProxyDecompress decodes gzip and br upstream responses.
	ProxyDecompress bool `env:"EDGE_PROXY_DECOMPRESS" envDefault:"false" toml:"proxy_decompress"`
}

// DefaultConfig returns the defaults used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Server:          server.DefaultConfig(),
		MaxBufferedBody: DefaultMaxBufferedBody,
		ProxyEnabled:    true,
		ProxyTimeout:    30 * time.Second,
	}
}
