package middleware

import (
	"github.com/deppfellow/erp-gateway/internal/logger"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	// UserIDKey holds the database login of the request, set by
	// RequireBasicAuth.
	UserIDKey = "user_id"

	// LoggerKey is used as the key for storing the request-scoped logger.
	LoggerKey = "logger"
)

// ContextEnhancer is a middleware helper that enriches request context.
//
// It builds a request-scoped logger with:
//   - request_id
//   - method, path, ip
//   - trace.id/span.id (if a New Relic transaction exists)
//
// and stores it in the Echo context and in the request's context.Context,
// where services pick it up with zerolog.Ctx.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer creates a new ContextEnhancer using the app Server container.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns an Echo middleware.
//
// It must run after RequestID and the New Relic middleware, and before
// anything that logs.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := GetRequestID(c)

			contextLogger := ce.server.Logger.With().
				Str("request_id", requestID).
				Str("method", c.Request().Method).
				Str("path", c.Path()). // route template, e.g. /api/bom/:bom_id/info
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			c.Set(LoggerKey, &contextLogger)

			ctx := contextLogger.WithContext(c.Request().Context())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID returns the database login of the request, or "".
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetLogger retrieves the request-scoped logger from Echo context.
//
// If EnhanceContext middleware didn't run, it returns a no-op logger.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
