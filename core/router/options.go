package router

import (
	"log/slog"

	"github.com/dmitrymomot/edgezero/core/handler"
)

// Option configures a Builder.
type Option func(*core)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMiddleware appends router-wide middleware.
func WithMiddleware(middlewares ...handler.Middleware) Option {
	return func(c *core) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// WithRouteListing registers the route listing endpoint at path, or at
// DefaultRouteListingPath when path is empty.
func WithRouteListing(path string) Option {
	return func(c *core) {
		if path == "" {
			path = DefaultRouteListingPath
		}
		c.listingPath = path
	}
}
