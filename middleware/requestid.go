package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

type requestIDContextKey struct{}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(ctx *handler.Context) bool
	// Generator creates new IDs (default: UUID v4).
	Generator func() string
	// HeaderName carries the ID on request and response (default: X-Request-ID).
	HeaderName string
	// UseExisting keeps an incoming ID instead of generating one.
	UseExisting bool
}

// RequestID tags each request with a fresh UUID.
func RequestID() handler.Middleware {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig stores the ID in the request context and echoes it on
// the response. Errors from the chain are rendered here so that the error
// envelope carries the ID too.
func RequestIDWithConfig(cfg RequestIDConfig) handler.Middleware {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string { return uuid.New().String() }
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		var id string
		if cfg.UseExisting {
			id = ctx.Header().Get(cfg.HeaderName)
		}
		if id == "" {
			id = cfg.Generator()
		}
		ctx.SetValue(requestIDContextKey{}, id)

		resp, err := next.Run(ctx)
		if err != nil {
			resp = edgeerr.From(err).Response()
		}
		if resp != nil {
			resp.Header.Set(cfg.HeaderName, id)
		}
		return resp, nil
	})
}

// GetRequestID returns the ID stored by RequestID.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}
