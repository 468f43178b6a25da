package middleware

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

const (
	KB int64 = 1024
	MB       = 1024 * KB
	GB       = 1024 * MB
)

// DefaultBodyLimit applies when BodyLimitConfig.MaxSize is unset.
const DefaultBodyLimit = 4 * MB

// BodyLimitConfig configures the body limit middleware.
type BodyLimitConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(ctx *handler.Context) bool
	// MaxSize in bytes (default: DefaultBodyLimit).
	MaxSize int64
	// ContentTypeLimit overrides MaxSize per media type.
	ContentTypeLimit map[string]int64
}

// BodyLimit rejects bodies larger than maxSize.
func BodyLimit(maxSize int64) handler.Middleware {
	return BodyLimitWithConfig(BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig answers 413 when a buffered body or the declared
// Content-Length exceeds the limit. Streaming bodies are wrapped so that
// reading past the limit fails with body.ErrBodyTooLarge.
func BodyLimitWithConfig(cfg BodyLimitConfig) handler.Middleware {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultBodyLimit
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		req := ctx.Request()
		limit := cfg.MaxSize
		if cfg.ContentTypeLimit != nil {
			if mt, _, err := mime.ParseMediaType(req.Header.Get("Content-Type")); err == nil {
				if l, ok := cfg.ContentTypeLimit[mt]; ok {
					limit = l
				}
			}
		}

		if cl := req.Header.Get("Content-Length"); cl != "" {
			if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > limit {
				return tooLarge(n, limit), nil
			}
		}

		if !req.Body.IsStream() {
			if n := int64(req.Body.Len()); n > limit {
				return tooLarge(n, limit), nil
			}
			return next.Run(ctx)
		}

		req.Body = limitStream(ctx, req.Body.Stream(), limit)
		return next.Run(ctx)
	})
}

func limitStream(ctx context.Context, s *body.Stream, limit int64) body.Body {
	var read int64
	return body.FromStream(body.NewStreamWithClose(func() ([]byte, error) {
		chunk, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		read += int64(len(chunk))
		if read > limit {
			return nil, fmt.Errorf("%w: limit %d bytes", body.ErrBodyTooLarge, limit)
		}
		return chunk, nil
	}, s.Close))
}

func tooLarge(size, limit int64) *message.Response {
	return errorResponse(http.StatusRequestEntityTooLarge, fmt.Sprintf("request body too large: size %s, maximum allowed %s",
		formatBytes(size), formatBytes(limit)))
}

func formatBytes(n int64) string {
	switch {
	case n >= GB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(GB))
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(MB))
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
