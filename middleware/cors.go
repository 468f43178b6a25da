package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(ctx *handler.Context) bool
	// AllowOrigins lists allowed origins; empty or "*" allows any.
	AllowOrigins []string
	// AllowMethods defaults to GET, HEAD, PUT, PATCH, POST and DELETE.
	AllowMethods []string
	// AllowHeaders defaults to common request headers.
	AllowHeaders []string
	// ExposeHeaders are readable by the client.
	ExposeHeaders []string
	// AllowCredentials is never sent together with a wildcard origin.
	AllowCredentials bool
	// MaxAge caches preflight results, in seconds.
	MaxAge int
	// AllowOriginFunc overrides AllowOrigins. It returns the origin value to
	// send and whether the origin is allowed.
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS allows any origin with the default methods and headers.
func CORS() handler.Middleware {
	return CORSWithConfig(CORSConfig{})
}

// CORSWithConfig answers preflight requests and decorates responses to
// allowed origins. Middleware only runs for matched routes, so preflight
// needs an OPTIONS route on the path (see Builder.Options). Errors from
// the chain are rendered here so that the client can read them.
func CORSWithConfig(cfg CORSConfig) handler.Middleware {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Accept-Language",
			"Content-Language",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-Request-ID",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")
	origins := make(map[string]bool, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		origins[o] = true
	}

	resolve := func(origin string) (string, bool) {
		switch {
		case cfg.AllowOriginFunc != nil:
			return cfg.AllowOriginFunc(origin)
		case len(origins) == 0 || origins["*"]:
			return "*", true
		case origins[origin]:
			return origin, true
		}
		return "", false
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		req := ctx.Request()
		allowedOrigin, allowed := resolve(req.Header.Get("Origin"))
		credentials := cfg.AllowCredentials && allowedOrigin != "*"

		if reqMethod := req.Header.Get("Access-Control-Request-Method"); req.Method == http.MethodOptions && reqMethod != "" {
			if !allowed || !slices.Contains(cfg.AllowMethods, reqMethod) {
				return message.NewResponse(http.StatusForbidden, body.Empty()), nil
			}
			resp := message.NewResponse(http.StatusNoContent, body.Empty())
			h := resp.Header
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			if req.Header.Get("Access-Control-Request-Headers") != "" {
				h.Set("Access-Control-Allow-Headers", allowHeaders)
			}
			if credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			h.Add("Vary", "Origin")
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			return resp, nil
		}

		resp, err := next.Run(ctx)
		if !allowed {
			return resp, err
		}
		if err != nil {
			resp, err = edgeerr.From(err).Response(), nil
		}
		if resp == nil {
			return resp, err
		}

		h := resp.Header
		h.Set("Access-Control-Allow-Origin", allowedOrigin)
		if credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}
		h.Add("Vary", "Origin")
		return resp, nil
	})
}

// AllowOriginWildcard allows any non-empty origin, echoing it back so that
// credentials can be allowed.
func AllowOriginWildcard() func(origin string) (string, bool) {
	return func(origin string) (string, bool) {
		return origin, origin != ""
	}
}

// AllowOriginSubdomain allows domain and its subdomains on any port.
// domain is given without a scheme, e.g. "example.com".
func AllowOriginSubdomain(domain string) func(origin string) (string, bool) {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(domain, "*."), "."))
	suffix := "." + domain

	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return "", false
		}
		host := strings.ToLower(u.Hostname())
		if host == domain || strings.HasSuffix(host, suffix) {
			return origin, true
		}
		return "", false
	}
}
