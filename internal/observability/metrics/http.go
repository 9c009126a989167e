package metrics

// Package metrics exposes Prometheus collectors for the gateway's HTTP
// surface. Path labels use the route pattern, never raw paths, to keep
// cardinality bounded.

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the gateway's HTTP metrics so tests can use a private
// registry instead of the process-global one.
type Collectors struct {
	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authFailures    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers the collectors on a fresh registry.
func New() *Collectors {
	c := &Collectors{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_auth_failures_total",
				Help: "Authentication and authorization failures by kind.",
			},
			[]string{"kind"},
		),
		registry: prometheus.NewRegistry(),
	}
	c.registry.MustRegister(c.inFlight, c.requestsTotal, c.requestDuration, c.authFailures)
	return c
}

// Handler serves the metrics endpoint.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Instrument wraps next with request counting, latency, and in-flight gauges.
// Completion runs deferred so a panicking handler still settles the gauge and
// counters before the recovery middleware above takes over.
func (c *Collectors) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.inFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			status := strconv.Itoa(sw.code)
			c.requestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
			c.requestsTotal.WithLabelValues(r.Method, status).Inc()
			c.inFlight.Dec()

			switch sw.code {
			case http.StatusUnauthorized:
				c.authFailures.WithLabelValues("unauthenticated").Inc()
			case http.StatusForbidden:
				c.authFailures.WithLabelValues("forbidden").Inc()
			}
		}()
		next.ServeHTTP(sw, r)
	})
}

// statusWriter records the response code for labeling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
