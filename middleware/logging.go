package middleware

import (
	"log/slog"
	"slices"
	"time"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/logger"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/router"
)

// LoggingConfig configures the request logger.
type LoggingConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(ctx *handler.Context) bool
	// Logger receives the records (default: slog.Default()).
	Logger *slog.Logger
	// LogLevel for successful requests (default: info).
	LogLevel slog.Level
	// LogHeaders adds request headers, redacting SensitiveHeaders.
	LogHeaders bool
	// SensitiveHeaders are logged as [REDACTED].
	SensitiveHeaders []string
	// SlowRequestThreshold raises successful requests to warn (default: 5s).
	SlowRequestThreshold time.Duration
	// Component attribute value (default: "http").
	Component string
}

// RequestLogger logs one record per request.
func RequestLogger() handler.Middleware {
	return RequestLoggerWithConfig(LoggingConfig{})
}

// RequestLoggerWithLogger is RequestLogger writing to l.
func RequestLoggerWithLogger(l *slog.Logger) handler.Middleware {
	return RequestLoggerWithConfig(LoggingConfig{Logger: l})
}

// RequestLoggerWithConfig logs method, path, status and elapsed time once
// the rest of the chain returns. Errors are logged at error level with the
// status they render as; the error itself is passed through unchanged.
func RequestLoggerWithConfig(cfg LoggingConfig) handler.Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = []string{
			"Authorization",
			"Cookie",
			"Set-Cookie",
			"X-Api-Key",
			"X-Auth-Token",
			"X-Csrf-Token",
		}
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		start := time.Now()
		req := ctx.Request()
		resp, err := next.Run(ctx)
		elapsed := time.Since(start)

		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Method(req.Method),
			logger.Path(req.Path()),
			logger.Latency(elapsed),
		}
		if route, ok := router.MatchedRoute(req); ok {
			attrs = append(attrs, logger.Pattern(route.Path))
		}
		if id, ok := GetRequestID(ctx); ok {
			attrs = append(attrs, logger.RequestID(id))
		}
		if req.URL != nil && req.URL.RawQuery != "" {
			attrs = append(attrs, logger.Query(req.URL.RawQuery))
		}
		if addr, ok := message.Get[message.RemoteAddr](req.Extensions()); ok {
			attrs = append(attrs, logger.RemoteAddr(string(addr)))
		}
		attrs = append(attrs,
			logger.UserAgent(req.Header.Get("User-Agent")),
			logger.BytesIn(int64(req.Body.Len())),
		)
		if cfg.LogHeaders {
			headers := make([]slog.Attr, 0, len(req.Header))
			for key, values := range req.Header {
				switch {
				case slices.Contains(cfg.SensitiveHeaders, key):
					headers = append(headers, slog.String(key, "[REDACTED]"))
				case len(values) == 1:
					headers = append(headers, slog.String(key, values[0]))
				default:
					headers = append(headers, slog.Any(key, values))
				}
			}
			attrs = append(attrs, logger.Group("request_headers", headers...))
		}

		level := cfg.LogLevel
		switch {
		case err != nil:
			ee := edgeerr.From(err)
			level = slog.LevelError
			attrs = append(attrs, logger.StatusCode(ee.Status()), logger.Error(err))
		case resp.Status >= 500:
			level = slog.LevelError
			attrs = append(attrs, logger.StatusCode(resp.Status))
		case elapsed > cfg.SlowRequestThreshold:
			level = slog.LevelWarn
			attrs = append(attrs, logger.StatusCode(resp.Status), slog.Bool("slow_request", true))
		default:
			attrs = append(attrs, logger.StatusCode(resp.Status))
		}
		if resp != nil && !resp.Body.IsStream() {
			attrs = append(attrs, logger.BytesOut(int64(resp.Body.Len())))
		}

		cfg.Logger.LogAttrs(ctx, level, "request completed", attrs...)
		return resp, err
	})
}
