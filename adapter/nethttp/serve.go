package nethttp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/edgezero/core/app"
	"github.com/dmitrymomot/edgezero/core/proxy"
	"github.com/dmitrymomot/edgezero/core/server"
)

// Serve runs a on the address in cfg until ctx is cancelled, then shuts
// down gracefully. When cfg.ProxyEnabled is set and a has no proxy handle,
// an HTTP proxy client is installed first.
func Serve(ctx context.Context, a *app.App, cfg Config, opts ...Option) error {
	if a == nil {
		return ErrNilDispatcher
	}

	h := NewHandler(a, append([]Option{WithLogger(a.Logger()), WithMaxBufferedBody(cfg.MaxBufferedBody)}, opts...)...)

	if cfg.ProxyEnabled && a.Proxy() == nil {
		a.SetProxy(proxy.NewHandle(proxy.NewHTTPClient(
			proxy.WithTimeout(cfg.ProxyTimeout),
			proxy.WithDecompression(cfg.ProxyDecompress),
			proxy.WithLogger(h.logger),
		)))
	}

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(h.logger))
	if err != nil {
		return fmt.Errorf("nethttp: %w", err)
	}

	h.logger.InfoContext(ctx, "serving app",
		slog.String("app", a.Name()),
		slog.Int("routes", len(a.Router().Routes())),
	)
	return srv.Run(ctx, h)()
}
