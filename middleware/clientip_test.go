package middleware_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/router"
	"github.com/dmitrymomot/edgezero/middleware"
)

func TestResolveClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"}, "", "1.1.1.1"},
		{"fastly", map[string]string{"Fastly-Client-IP": "3.3.3.3"}, "", "3.3.3.3"},
		{"forwarded leftmost", map[string]string{"X-Forwarded-For": "4.4.4.4, 10.0.0.1"}, "", "4.4.4.4"},
		{"invalid header skipped", map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "5.5.5.5"}, "", "5.5.5.5"},
		{"unspecified rejected", map[string]string{"X-Real-IP": "0.0.0.0"}, "6.6.6.6:1234", "6.6.6.6"},
		{"ipv6 remote", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"raw remote", nil, "pipe", "pipe"},
		{"nothing known", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t, http.MethodGet, "/", body.Empty())
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if tt.remote != "" {
				message.Insert(req.Extensions(), message.RemoteAddr(tt.remote))
			}
			assert.Equal(t, tt.want, middleware.ResolveClientIP(req))
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	t.Parallel()

	var stored, key string
	svc := router.NewBuilder().
		Use(middleware.ClientIPWithConfig(middleware.ClientIPConfig{StoreInHeader: true})).
		Get("/", func(ctx *handler.Context) (*message.Response, error) {
			stored, _ = middleware.GetClientIP(ctx)
			key = middleware.ClientIPKey(ctx)
			return ok(ctx)
		}).
		Build()

	req := request(t, http.MethodGet, "/", body.Empty())
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	resp := svc.Oneshot(req)

	assert.Equal(t, "203.0.113.7", stored)
	assert.Equal(t, "203.0.113.7", key)
	assert.Equal(t, "203.0.113.7", resp.Header.Get("X-Client-IP"))
}
