// Package middleware provides dispatch middleware for the router: request
// logging, request IDs, client IP resolution, CORS, panic recovery, body
// limits, rate limiting, Prometheus metrics and security headers.
//
// Every constructor returns a handler.Middleware. Register them globally on
// the builder or inside a group:
//
//	m := metrics.New()
//	b := router.NewBuilder()
//	b.Use(
//		middleware.Recover(),
//		middleware.RequestID(),
//		middleware.RequestLogger(),
//		middleware.Metrics(m),
//	)
//	b.Group("/api", func(g *router.Builder) {
//		g.Use(middleware.RateLimit(middleware.RateLimitConfig{
//			Limiter:    middleware.NewMemoryLimiter(10, 20),
//			SetHeaders: true,
//		}))
//		g.Post("/items", createItem)
//	})
//
// Middleware run in registration order and unwind in reverse. Short
// circuits (413 from BodyLimit, 429 from RateLimit) are returned as
// responses so outer middleware still observe them. Loggers default to
// slog.Default().
package middleware
