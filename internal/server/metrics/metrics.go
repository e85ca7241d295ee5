// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// AuthResultsTotal counts login, refresh, logout and access checks by
	// transport and result, where result is "ok" or a rejection reason.
	AuthResultsTotal *prometheus.CounterVec
	DevicesEnrolled  prometheus.Counter
	DevicesRevoked   prometheus.Counter
}

// New creates and registers all metrics on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sidhilynx_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sidhilynx_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sidhilynx_auth_results_total",
				Help: "Authentication outcomes by transport, operation and result",
			},
			[]string{"transport", "operation", "result"},
		),
		DevicesEnrolled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidhilynx_devices_enrolled_total",
			Help: "Devices enrolled on first login",
		}),
		DevicesRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidhilynx_devices_revoked_total",
			Help: "Devices revoked through the admin surface",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthResultsTotal,
		m.DevicesEnrolled,
		m.DevicesRevoked,
	)
	return m
}

// ObserveAuth records one authentication outcome.
func (m *Metrics) ObserveAuth(transport, operation, result string) {
	m.AuthResultsTotal.WithLabelValues(transport, operation, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HTTPMiddleware records request count and latency labelled by the chi
// route pattern, so path parameters do not explode cardinality.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
