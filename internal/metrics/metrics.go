// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session open outcomes.
const (
	SessionOpened   = "opened"
	SessionRejected = "rejected"
)

// Registry is a private Prometheus registry plus the gateway's collectors.
type Registry struct {
	reg *prometheus.Registry

	// HTTPRequests counts finished requests by method, route and status.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes request latency by method and route.
	HTTPDuration *prometheus.HistogramVec
	// Sessions counts database session attempts by outcome.
	Sessions *prometheus.CounterVec
	// ArchiveUploads counts CSV archive uploads by outcome.
	ArchiveUploads *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors, including the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_gateway_http_requests_total",
		Help: "HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "erp_gateway_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_gateway_db_sessions_total",
		Help: "Per-request database session attempts, by outcome.",
	}, []string{"outcome"})
	archiveUploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_gateway_archive_uploads_total",
		Help: "CSV report archive uploads, by outcome.",
	}, []string{"outcome"})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		sessions,
		archiveUploads,
	)

	return &Registry{
		reg:            r,
		HTTPRequests:   httpRequests,
		HTTPDuration:   httpDuration,
		Sessions:       sessions,
		ArchiveUploads: archiveUploads,
	}
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
