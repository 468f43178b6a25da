package middleware

import (
	"strconv"
	"time"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/metrics"
	"github.com/dmitrymomot/edgezero/core/router"
)

// Metrics records request count, latency and in-flight requests on m,
// labelled by method, status and matched route pattern. It panics when m
// is nil.
func Metrics(m *metrics.Metrics) handler.Middleware {
	if m == nil {
		panic(ErrMetricsRequired)
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		resp, err := next.Run(ctx)

		var status int
		if err != nil {
			ee := edgeerr.From(err)
			status = ee.Status()
			m.ErrorsTotal.WithLabelValues(ee.Kind().String()).Inc()
		} else {
			status = resp.Status
		}

		route := metrics.UnmatchedRoute
		if info, ok := router.MatchedRoute(ctx.Request()); ok {
			route = info.Path
		}
		method := metrics.NormalizeMethod(ctx.Method())
		code := strconv.Itoa(status)

		m.RequestsTotal.WithLabelValues(method, code, route).Inc()
		m.RequestDuration.WithLabelValues(method, code, route).Observe(time.Since(start).Seconds())
		return resp, err
	})
}
