package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

// RateResult is the outcome of a limiter check.
type RateResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (RateResult, error)
}

// MemoryLimiter keeps one token bucket per key in process. Buckets idle for
// longer than the idle timeout are dropped during Allow.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiterOption configures a MemoryLimiter.
type MemoryLimiterOption func(*MemoryLimiter)

// WithIdleTimeout sets how long an unused bucket is kept (default: 3m).
func WithIdleTimeout(d time.Duration) MemoryLimiterOption {
	return func(l *MemoryLimiter) {
		if d > 0 {
			l.idle = d
		}
	}
}

// WithLimiterClock overrides the limiter time source.
func WithLimiterClock(now func() time.Time) MemoryLimiterOption {
	return func(l *MemoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewMemoryLimiter allows perSecond requests per key with bursts of burst.
// burst defaults to ceil(perSecond).
func NewMemoryLimiter(perSecond float64, burst int, opts ...MemoryLimiterOption) *MemoryLimiter {
	if burst <= 0 {
		burst = max(1, int(math.Ceil(perSecond)))
	}
	l := &MemoryLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    3 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token from key's bucket.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (RateResult, error) {
	now := l.now()

	l.mu.Lock()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	res := RateResult{Limit: l.burst}
	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
	} else {
		res.Allowed = true
	}
	res.Remaining = max(0, int(b.limiter.TokensAt(now)))
	return res, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.idle {
		return
	}
	l.swept = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, k)
		}
	}
}

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(ctx *handler.Context) bool
	// Limiter is required.
	Limiter Limiter
	// KeyExtractor derives the bucket key (default: remote host).
	KeyExtractor func(ctx *handler.Context) string
	// SetHeaders adds X-RateLimit-* headers to responses.
	SetHeaders bool
}

// RateLimit answers 429 once a key exhausts its budget. It panics without
// a limiter.
func RateLimit(cfg RateLimitConfig) handler.Middleware {
	if cfg.Limiter == nil {
		panic(ErrLimiterRequired)
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = remoteHost
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next.Run(ctx)
		}

		res, err := cfg.Limiter.Allow(ctx, cfg.KeyExtractor(ctx))
		if err != nil {
			return nil, edgeerr.Internal(err)
		}

		if !res.Allowed {
			resp := errorResponse(http.StatusTooManyRequests, "too many requests")
			if secs := retrySeconds(res.RetryAfter); secs > 0 {
				resp.Header.Set("Retry-After", strconv.Itoa(secs))
			}
			if cfg.SetHeaders {
				setRateHeaders(resp, res)
			}
			return resp, nil
		}

		resp, err := next.Run(ctx)
		if resp != nil && cfg.SetHeaders {
			setRateHeaders(resp, res)
		}
		return resp, err
	})
}

func remoteHost(ctx *handler.Context) string {
	if addr, ok := message.Get[message.RemoteAddr](ctx.Extensions()); ok {
		return addr.Host()
	}
	return "unknown"
}

func retrySeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func setRateHeaders(resp *message.Response, res RateResult) {
	resp.Header.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	resp.Header.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
}
