package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

type clientIPContextKey struct{}

// clientIPHeaders are checked in order before the connection address.
var clientIPHeaders = []string{
	"CF-Connecting-IP",
	"Fastly-Client-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// ClientIPConfig configures the client IP middleware.
type ClientIPConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(ctx *handler.Context) bool
	// HeaderName is the response header set when StoreInHeader is on
	// (default: "X-Client-IP").
	HeaderName string
	// StoreInHeader echoes the address on the response.
	StoreInHeader bool
}

// ClientIP stores the resolved client address on the request context.
func ClientIP() handler.Middleware {
	return ClientIPWithConfig(ClientIPConfig{})
}

// ClientIPWithConfig is ClientIP with custom settings.
func ClientIPWithConfig(cfg ClientIPConfig) handler.Middleware {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		ip := ResolveClientIP(ctx.Request())
		ctx.SetValue(clientIPContextKey{}, ip)

		resp, err := next.Run(ctx)
		if resp != nil && cfg.StoreInHeader && ip != "" {
			resp.Header.Set(cfg.HeaderName, ip)
		}
		return resp, err
	})
}

// GetClientIP returns the address stored by ClientIP.
func GetClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPContextKey{}).(string)
	return ip, ok
}

// ClientIPKey is a RateLimit key extractor using the stored client address,
// resolving it when ClientIP did not run.
func ClientIPKey(ctx *handler.Context) string {
	if ip, ok := GetClientIP(ctx); ok && ip != "" {
		return ip
	}
	if ip := ResolveClientIP(ctx.Request()); ip != "" {
		return ip
	}
	return "unknown"
}

// ResolveClientIP checks the edge and proxy headers in priority order, then
// the connection address. X-Forwarded-For yields its leftmost entry. Invalid
// and unspecified addresses are skipped. The result is empty when nothing
// is known.
func ResolveClientIP(req *message.Request) string {
	for _, name := range clientIPHeaders {
		v := req.Header.Get(name)
		if v == "" {
			continue
		}
		if name == "X-Forwarded-For" {
			v, _, _ = strings.Cut(v, ",")
		}
		if ip := normalizeIP(v); ip != "" {
			return ip
		}
	}

	addr, ok := message.Get[message.RemoteAddr](req.Extensions())
	if !ok {
		return ""
	}
	if ip := normalizeIP(addr.Host()); ip != "" {
		return ip
	}
	return string(addr)
}

func normalizeIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
