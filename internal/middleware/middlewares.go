package middleware

import (
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares is a lightweight container that groups all middleware components
// used by the HTTP server.
//
// Shared dependencies (*server.Server, the New Relic application) are wired
// in once here.
type Middlewares struct {
	// Global holds common middleware used across the whole API:
	// CORS, request logging, recovery, secure headers, and the global error handler.
	Global *GlobalMiddlewares

	// Auth demands Basic credentials on /api routes.
	Auth *AuthMiddleware

	// ContextEnhancer enriches each request with a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware and helpers to attach custom attributes
	// and notice errors on transactions.
	Tracing *TracingMiddleware

	// Metrics feeds the Prometheus registry.
	Metrics *MetricsMiddleware
}

// NewMiddlewares constructs all middleware components using the application container.
//
// When New Relic is not configured nrApp is nil and the tracing middleware
// degrades into a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		Metrics:         NewMetricsMiddleware(s),
	}
}
