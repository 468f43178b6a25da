package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/metrics"
	"github.com/dmitrymomot/edgezero/core/response"
	"github.com/dmitrymomot/edgezero/core/router"
	"github.com/dmitrymomot/edgezero/middleware"
)

func request(t *testing.T, method, target string, b body.Body) *message.Request {
	t.Helper()
	req, err := message.NewRequest(method, target, b)
	require.NoError(t, err)
	return req
}

func ok(ctx *handler.Context) (*message.Response, error) {
	return response.Text(http.StatusOK, "ok"), nil
}

// syncBuffer guards a buffer shared with a slog handler.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) records(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func jsonLogger(w *syncBuffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	svc := router.NewBuilder().
		Use(middleware.RequestID()).
		Get("/", func(ctx *handler.Context) (*message.Response, error) {
			seen, _ = middleware.GetRequestID(ctx)
			return ok(ctx)
		}).
		Build()

	resp := svc.Oneshot(request(t, http.MethodGet, "/", body.Empty()))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, resp.Header.Get("X-Request-ID"))
	assert.Len(t, seen, 36)
}

func TestRequestIDOnErrorResponse(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().
		Use(middleware.RequestID()).
		Get("/fail", func(ctx *handler.Context) (*message.Response, error) {
			return nil, edgeerr.BadRequest("nope")
		}).
		Build()

	resp := svc.Oneshot(request(t, http.MethodGet, "/fail", body.Empty()))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)
	assert.Contains(t, string(resp.Body.Bytes()), `"message":"nope"`)
}

func TestRequestIDUseExisting(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().
		Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{UseExisting: true, HeaderName: "X-Trace"})).
		Get("/", ok).
		Build()

	req := request(t, http.MethodGet, "/", body.Empty())
	req.Header.Set("X-Trace", "abc")
	assert.Equal(t, "abc", svc.Oneshot(req).Header.Get("X-Trace"))

	_, found := middleware.GetRequestID(context.Background())
	assert.False(t, found)
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	svc := router.NewBuilder().
		Use(middleware.RequestLoggerWithLogger(jsonLogger(&buf))).
		Get("/users/{id}", ok).
		Get("/fail", func(*handler.Context) (*message.Response, error) {
			return nil, edgeerr.BadRequest("nope")
		}).
		Build()

	req := request(t, http.MethodGet, "/users/1?x=1", body.FromString("hello"))
	req.Header.Set("User-Agent", "edge-test/1.0")
	svc.Oneshot(req)
	svc.Oneshot(request(t, http.MethodGet, "/fail", body.FromChunks([]byte("x"))))

	recs := buf.records(t)
	require.Len(t, recs, 2)

	assert.Equal(t, "INFO", recs[0]["level"])
	assert.Equal(t, "request completed", recs[0]["msg"])
	assert.Equal(t, "GET", recs[0]["method"])
	assert.Equal(t, "/users/1", recs[0]["path"])
	assert.Equal(t, "/users/{id}", recs[0]["pattern"])
	assert.InDelta(t, 200, recs[0]["status_code"], 0)
	assert.Equal(t, "edge-test/1.0", recs[0]["user_agent"])
	assert.InDelta(t, 5, recs[0]["bytes_in"], 0)

	assert.Equal(t, "ERROR", recs[1]["level"])
	assert.NotContains(t, recs[1], "user_agent")
	assert.NotContains(t, recs[1], "bytes_in")
	assert.InDelta(t, 400, recs[1]["status_code"], 0)
	assert.Equal(t, "nope", recs[1]["error"])
}

func TestRequestLoggerRedactsHeaders(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	svc := router.NewBuilder().
		Use(middleware.RequestLoggerWithConfig(middleware.LoggingConfig{Logger: jsonLogger(&buf), LogHeaders: true})).
		Get("/", ok).
		Build()

	req := request(t, http.MethodGet, "/", body.Empty())
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Accept", "text/plain")
	svc.Oneshot(req)

	recs := buf.records(t)
	require.Len(t, recs, 1)
	headers, _ := recs[0]["request_headers"].(map[string]any)
	assert.Equal(t, "[REDACTED]", headers["Authorization"])
	assert.Equal(t, "text/plain", headers["Accept"])
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	sentinel := errors.New("boom")
	svc := router.NewBuilder().
		Use(middleware.RecoverWithConfig(middleware.RecoverConfig{Logger: jsonLogger(&buf)})).
		Get("/panic", func(*handler.Context) (*message.Response, error) { panic(sentinel) }).
		Get("/stream", func(ctx *handler.Context) (*message.Response, error) {
			_ = ctx.Body().Bytes()
			return ok(ctx)
		}).
		Build()

	_, err := svc.Dispatch(request(t, http.MethodGet, "/panic", body.Empty()))
	var ee *edgeerr.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, edgeerr.KindInternal, ee.Kind())
	assert.ErrorIs(t, err, sentinel)

	var pe middleware.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, sentinel, pe.Value())
	assert.NotEmpty(t, pe.Stack())

	resp := svc.Oneshot(request(t, http.MethodGet, "/stream", body.FromChunks([]byte("x"))))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)

	recs := buf.records(t)
	require.Len(t, recs, 2)
	assert.Equal(t, "panic recovered", recs[0]["msg"])
	assert.Contains(t, recs[0], "stack")
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().
		Use(middleware.BodyLimit(8)).
		Post("/", func(ctx *handler.Context) (*message.Response, error) {
			b, err := body.Collect(ctx, ctx.Body(), 0)
			if err != nil {
				return nil, edgeerr.BadRequest(err.Error())
			}
			return response.Bytes(http.StatusOK, "", b.Bytes()), nil
		}).
		Build()

	resp := svc.Oneshot(request(t, http.MethodPost, "/", body.FromString("small")))
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = svc.Oneshot(request(t, http.MethodPost, "/", body.FromString("way too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Status)
	assert.Contains(t, string(resp.Body.Bytes()), `"status":413`)

	req := request(t, http.MethodPost, "/", body.FromChunks([]byte("x")))
	req.Header.Set("Content-Length", "100")
	assert.Equal(t, http.StatusRequestEntityTooLarge, svc.Oneshot(req).Status)

	resp = svc.Oneshot(request(t, http.MethodPost, "/", body.FromChunks([]byte("1234"), []byte("5678"))))
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = svc.Oneshot(request(t, http.MethodPost, "/", body.FromChunks([]byte("12345"), []byte("6789"))))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, string(resp.Body.Bytes()), body.ErrBodyTooLarge.Error())
}

// Not parallel: counts goroutines.
func TestBodyLimitUnreadStreamHoldsNoGoroutine(t *testing.T) {
	svc := router.NewBuilder().
		Use(middleware.BodyLimit(1024)).
		Post("/", ok).
		Build()

	before := runtime.NumGoroutine()
	for range 500 {
		resp := svc.Oneshot(request(t, http.MethodPost, "/", body.FromChunks([]byte("abc"))))
		require.Equal(t, http.StatusOK, resp.Status)
	}
	assert.Less(t, runtime.NumGoroutine()-before, 10)
}

func TestBodyLimitClosePropagates(t *testing.T) {
	t.Parallel()

	closed := false
	src := body.NewStreamWithClose(func() ([]byte, error) { return []byte("abc"), nil }, func() { closed = true })

	svc := router.NewBuilder().
		Use(middleware.BodyLimit(1024)).
		Post("/", func(ctx *handler.Context) (*message.Response, error) {
			s := ctx.Body().Stream()
			_, err := s.Next(ctx)
			require.NoError(t, err)
			s.Close()
			return response.NoContent(), nil
		}).
		Build()

	resp := svc.Oneshot(request(t, http.MethodPost, "/", body.FromStream(src)))
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.True(t, closed)
}

func TestBodyLimitPerContentType(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().
		Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			MaxSize:          4,
			ContentTypeLimit: map[string]int64{"application/json": 64},
		})).
		Post("/", ok).
		Build()

	req := request(t, http.MethodPost, "/", body.FromString(`{"name":"long enough"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.Equal(t, http.StatusOK, svc.Oneshot(req).Status)

	req = request(t, http.MethodPost, "/", body.FromString(`plain text`))
	req.Header.Set("Content-Type", "text/plain")
	assert.Equal(t, http.StatusRequestEntityTooLarge, svc.Oneshot(req).Status)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_000, 0)
	limiter := middleware.NewMemoryLimiter(1, 2, middleware.WithLimiterClock(func() time.Time { return now }))
	svc := router.NewBuilder().
		Use(middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter, SetHeaders: true})).
		Get("/", ok).
		Build()

	from := func(addr string) *message.Request {
		req := request(t, http.MethodGet, "/", body.Empty())
		message.Insert(req.Extensions(), message.RemoteAddr(addr))
		return req
	}

	first := svc.Oneshot(from("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, first.Status)
	assert.Equal(t, "2", first.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header.Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, svc.Oneshot(from("10.0.0.1:1001")).Status)

	limited := svc.Oneshot(from("10.0.0.1:1002"))
	assert.Equal(t, http.StatusTooManyRequests, limited.Status)
	assert.Equal(t, "1", limited.Header.Get("Retry-After"))
	assert.Equal(t, "0", limited.Header.Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, svc.Oneshot(from("10.0.0.2:1000")).Status)

	assert.Panics(t, func() { middleware.RateLimit(middleware.RateLimitConfig{}) })
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	m := metrics.New(metrics.WithoutRuntimeCollectors())
	svc := router.NewBuilder().
		Use(middleware.Metrics(m)).
		Get("/items/{id}", ok).
		Get("/broken", func(*handler.Context) (*message.Response, error) {
			return nil, errors.New("db down")
		}).
		Build()

	svc.Oneshot(request(t, http.MethodGet, "/items/1", body.Empty()))
	svc.Oneshot(request(t, http.MethodGet, "/items/2", body.Empty()))
	svc.Oneshot(request(t, http.MethodGet, "/broken", body.Empty()))

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		switch f.GetName() {
		case "edgezero_requests_total":
			for _, metric := range f.GetMetric() {
				var route, status string
				for _, l := range metric.GetLabel() {
					switch l.GetName() {
					case "route":
						route = l.GetValue()
					case "status_code":
						status = l.GetValue()
					}
				}
				counts[route+" "+status] = metric.GetCounter().GetValue()
			}
		case "edgezero_errors_total":
			require.Len(t, f.GetMetric(), 1)
			assert.InDelta(t, 1, f.GetMetric()[0].GetCounter().GetValue(), 0)
		}
	}
	assert.InDelta(t, 2, counts["/items/{id} 200"], 0)
	assert.InDelta(t, 1, counts["/broken 500"], 0)

	assert.Panics(t, func() { middleware.Metrics(nil) })
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().
		Use(middleware.SecurityHeaders()).
		Get("/", ok).
		Build()
	resp := svc.Oneshot(request(t, http.MethodGet, "/", body.Empty()))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("Strict-Transport-Security"))

	cfg := middleware.DevelopmentSecurity
	cfg.CustomHeaders = map[string]string{"X-Env": "dev"}
	dev := router.NewBuilder().Use(middleware.SecurityHeadersWithConfig(cfg)).Get("/", ok).Build()
	resp = dev.Oneshot(request(t, http.MethodGet, "/", body.Empty()))
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
	assert.Equal(t, "dev", resp.Header.Get("X-Env"))
}

func TestMiddlewareSkip(t *testing.T) {
	t.Parallel()

	skipAll := func(*handler.Context) bool { return true }
	svc := router.NewBuilder().
		Use(
			middleware.RequestIDWithConfig(middleware.RequestIDConfig{Skip: skipAll}),
			middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{Skip: skipAll, MaxSize: 1}),
		).
		Post("/", ok).
		Build()

	resp := svc.Oneshot(request(t, http.MethodPost, "/", body.FromString("larger than one byte")))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Header.Get("X-Request-ID"))
}
