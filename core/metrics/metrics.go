// Package metrics provides the Prometheus collectors recorded by the
// metrics middleware and exposed by the dev server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "edgezero"

// UnmatchedRoute labels requests that matched no route.
const UnmatchedRoute = "unmatched"

var defaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds the registry and the dispatch collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	ErrorsTotal      *prometheus.CounterVec
}

type config struct {
	namespace string
	runtime   bool
}

// Option configures New.
type Option func(*config)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithoutRuntimeCollectors skips the Go and process collectors.
func WithoutRuntimeCollectors() Option {
	return func(c *config) {
		c.runtime = false
	}
}

// New returns metrics registered on a fresh registry.
func New(opts ...Option) *Metrics {
	cfg := config{namespace: DefaultNamespace, runtime: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg := prometheus.NewRegistry()
	if cfg.runtime {
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "requests_total",
			Help:      "Total dispatched requests.",
		}, []string{"method", "status_code", "route"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "request_duration_seconds",
			Help:      "Dispatch latency in seconds.",
			Buckets:   defaultBuckets,
		}, []string{"method", "status_code", "route"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "requests_in_flight",
			Help:      "Requests currently being dispatched.",
		}),

		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "errors_total",
			Help:      "Dispatch errors by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.ErrorsTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

var knownMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true, http.MethodDelete: true,
	http.MethodPatch: true, http.MethodHead: true, http.MethodOptions: true,
}

// NormalizeMethod maps non-standard methods to "other" to bound label
// cardinality.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}
