package middleware

import (
	"maps"

	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

// SecurityHeadersConfig configures the security headers middleware. Empty
// fields are not sent.
type SecurityHeadersConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(ctx *handler.Context) bool

	ContentTypeOptions        string
	FrameOptions              string
	StrictTransportSecurity   string
	ContentSecurityPolicy     string
	ReferrerPolicy            string
	PermissionsPolicy         string
	CrossOriginOpenerPolicy   string
	CrossOriginResourcePolicy string

	// CustomHeaders are sent in addition to the fields above.
	CustomHeaders map[string]string

	// IsDevelopment drops HSTS.
	IsDevelopment bool
}

var (
	// StrictSecurity isolates the application completely.
	StrictSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "DENY",
		StrictTransportSecurity:   "max-age=63072000; includeSubDomains; preload",
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
		ReferrerPolicy:            "no-referrer",
		PermissionsPolicy:         "accelerometer=(), camera=(), geolocation=(), microphone=(), payment=(), usb=()",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
	}

	// BalancedSecurity suits most JSON APIs and simple sites.
	BalancedSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "SAMEORIGIN",
		StrictTransportSecurity:   "max-age=31536000; includeSubDomains",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		PermissionsPolicy:         "geolocation=(), microphone=(), camera=()",
		CrossOriginOpenerPolicy:   "same-origin-allow-popups",
		CrossOriginResourcePolicy: "cross-origin",
	}

	// DevelopmentSecurity is for local use only.
	DevelopmentSecurity = SecurityHeadersConfig{
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      true,
	}
)

// SecurityHeaders applies BalancedSecurity.
func SecurityHeaders() handler.Middleware {
	return SecurityHeadersWithConfig(BalancedSecurity)
}

// SecurityHeadersStrict applies StrictSecurity.
func SecurityHeadersStrict() handler.Middleware {
	return SecurityHeadersWithConfig(StrictSecurity)
}

// SecurityHeadersWithConfig sets the configured headers on every response
// produced by the rest of the chain. Error responses rendered after
// dispatch are not decorated.
func SecurityHeadersWithConfig(cfg SecurityHeadersConfig) handler.Middleware {
	if cfg.IsDevelopment {
		cfg.StrictTransportSecurity = ""
	}

	headers := make(map[string]string)
	for name, value := range map[string]string{
		"X-Content-Type-Options":       cfg.ContentTypeOptions,
		"X-Frame-Options":              cfg.FrameOptions,
		"Strict-Transport-Security":    cfg.StrictTransportSecurity,
		"Content-Security-Policy":      cfg.ContentSecurityPolicy,
		"Referrer-Policy":              cfg.ReferrerPolicy,
		"Permissions-Policy":           cfg.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   cfg.CrossOriginOpenerPolicy,
		"Cross-Origin-Resource-Policy": cfg.CrossOriginResourcePolicy,
	} {
		if value != "" {
			headers[name] = value
		}
	}
	maps.Copy(headers, cfg.CustomHeaders)

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}
		resp, err := next.Run(ctx)
		if resp != nil {
			for k, v := range headers {
				resp.Header.Set(k, v)
			}
		}
		return resp, err
	})
}
