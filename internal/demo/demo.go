// Package demo is the sample application hosted by edgezero-dev.
package demo

import (
	"log/slog"
	"net/url"

	"github.com/dmitrymomot/edgezero/core/app"
	"github.com/dmitrymomot/edgezero/core/health"
	"github.com/dmitrymomot/edgezero/core/metrics"
	"github.com/dmitrymomot/edgezero/core/router"
	"github.com/dmitrymomot/edgezero/middleware"
)

// Name is the demo application name.
const Name = "EdgeZero Demo"

// Hooks builds the demo routes. Zero fields disable the matching feature.
type Hooks struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Limiter middleware.Limiter
	// Upstream is the base URL /proxy/* forwards to.
	Upstream *url.URL
	// BodyLimit caps request bodies (default: middleware.DefaultBodyLimit).
	BodyLimit int64
	// Probes back /health/ready.
	Probes []health.Check
	// CORSOrigins enables CORS for the JSON endpoints ("*" allows any).
	CORSOrigins []string
}

var (
	_ app.Hooks = Hooks{}
	_ app.Namer = Hooks{}
)

// Name implements app.Namer.
func (Hooks) Name() string { return Name }

// Routes implements app.Hooks.
func (h Hooks) Routes() *router.Service {
	b := router.NewBuilder(router.WithLogger(h.Logger)).EnableRouteListing()

	b.Use(middleware.Recover())
	b.Use(middleware.RequestID())
	b.Use(middleware.ClientIP())
	if len(h.CORSOrigins) > 0 {
		b.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  h.CORSOrigins,
			ExposeHeaders: []string{"X-Request-ID"},
		}))
	}
	if h.Logger != nil {
		b.Use(middleware.RequestLoggerWithLogger(h.Logger))
	}
	if h.Metrics != nil {
		b.Use(middleware.Metrics(h.Metrics))
	}
	b.Use(middleware.SecurityHeaders())
	if h.Limiter != nil {
		b.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:      h.Limiter,
			KeyExtractor: middleware.ClientIPKey,
			SetHeaders:   true,
		}))
	}
	limit := h.BodyLimit
	if limit <= 0 {
		limit = middleware.DefaultBodyLimit
	}
	b.Use(middleware.BodyLimit(limit))

	b.Get("/health/live", health.Liveness)
	b.Get("/health/ready", health.Readiness(h.Logger, h.Probes...))
	b.Get("/", root)
	b.Get("/echo/{name}", echo)
	b.Post("/echo", echoJSON)
	b.Get("/headers", headers)
	b.Get("/stream", stream)
	b.Get("/events", events)
	b.Get("/items", items)
	if len(h.CORSOrigins) > 0 {
		b.Options("/echo", preflight)
		b.Options("/items", preflight)
	}
	b.Group("/counter", func(g *router.Builder) {
		g.Get("/{name}", readCounter)
		g.Post("/{name}", incrementCounter)
		g.Delete("/{name}", resetCounter)
	})
	b.Get("/counters", listCounters)
	forward := proxyTo(h.Upstream)
	b.Get("/proxy/*", forward)
	b.Post("/proxy/*", forward)

	return b.Build()
}
