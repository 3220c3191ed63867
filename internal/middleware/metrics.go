package middleware

import (
	"strconv"
	"time"

	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/deppfellow/erp-gateway/internal/metrics"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// MetricsMiddleware records Prometheus metrics and, when New Relic is
// enabled, custom events for database login outcomes.
type MetricsMiddleware struct {
	server *server.Server
}

func NewMetricsMiddleware(s *server.Server) *MetricsMiddleware {
	return &MetricsMiddleware{
		server: s,
	}
}

// Collect counts every request and observes its latency, labelled by the
// route template so ids do not explode the label space.
func (m *MetricsMiddleware) Collect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.server.Metrics == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.server.Metrics.HTTPRequests.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(responseStatus(c, err))).
				Inc()
			m.server.Metrics.HTTPDuration.
				WithLabelValues(c.Request().Method, route).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordSession counts a database session attempt. outcome is
// metrics.SessionOpened or metrics.SessionRejected.
func (m *MetricsMiddleware) RecordSession(outcome string, user string) {
	if m.server.Metrics != nil {
		m.server.Metrics.Sessions.WithLabelValues(outcome).Inc()
	}

	if outcome == metrics.SessionRejected && m.server.LoggerService != nil && m.server.LoggerService.GetApplication() != nil {
		m.server.LoggerService.GetApplication().RecordCustomEvent("DatabaseLoginRejected", map[string]interface{}{
			"db_user": user,
		})
	}
}

// responseStatus is the status the client will see. When the handler
// returned an error the response is not written yet, so it comes from the
// error.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code
	}

	return 500
}
