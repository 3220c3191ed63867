package middleware

import (
	"net/http"

	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the middleware every route gets and the global
// error handler. It keeps *server.Server for config values such as the CORS
// allow-list and the slow request threshold.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo's CORS middleware configured by server config.
//
// Browser clients on the allow-listed origins may send credentials, any
// method and any header. The Basic challenge header is exposed so those
// clients can tell a failed login apart from other errors.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     global.server.Config.Server.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		// No AllowHeaders: echo then reflects the preflight's requested headers.
		ExposeHeaders: []string{echo.HeaderWWWAuthenticate, echo.HeaderContentDisposition, RequestIDHeader},
	})
}

// RequestLogger returns Echo's request logger middleware with a zerolog
// LogValuesFunc: one "API" line per request, leveled by status.
//
// Requests slower than observability.logging.slow_request_threshold are
// logged at warn level even when they succeed.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	slowThreshold := global.server.Config.Observability.Logging.SlowRequestThreshold

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// When a handler returns an error the global error handler has
			// not written the response yet, so v.Status is still 200.
			// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				} else {
					statusCode = http.StatusInternalServerError
				}
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			case slowThreshold > 0 && v.Latency > slowThreshold:
				e = logger.Warn().Bool("slow", true)
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("db_user", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover returns Echo's panic recovery middleware.
// A panicking handler becomes a 500; its database session is still closed.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure returns Echo's secure headers middleware.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
//   - *errs.HTTPError is written as is
//   - echo errors keep their status; unknown routes become our 404 shape
//   - anything else is a driver or unexpected error and goes through
//     sqlerr.HandleError, which answers 500 with the database's own text
//
// Every 401 carries the WWW-Authenticate: Basic challenge.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	// Logs keep the original error, the client may get a translated one.
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if echoErr.Code == http.StatusNotFound {
				err = errs.NewNotFoundError("Route not found", false, nil)
			}
		} else {
			err = sqlerr.HandleError(err)
		}
	}

	var echoErr *echo.HTTPError
	var status int
	var code string
	var message string
	var fieldErrors []errs.FieldError
	var action *errs.Action
	override := false

	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Status
		code = httpErr.Code
		message = httpErr.Message
		fieldErrors = httpErr.Errors
		action = httpErr.Action
		override = httpErr.Override

	case errors.As(err, &echoErr):
		status = echoErr.Code
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(status))

		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(echoErr.Code)
		}

	default:
		status = http.StatusInternalServerError
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError))
		message = http.StatusText(http.StatusInternalServerError)
	}

	logger := *GetLogger(c)

	event := logger.Error()
	if status < 500 {
		event = logger.Warn()
	}
	event.Stack().
		Err(originalErr).
		Int("status", status).
		Str("error_code", code).
		Msg(message)

	if c.Response().Committed {
		return
	}

	if status == http.StatusUnauthorized {
		challenge := BasicChallenge
		if action != nil && action.Type == errs.ActionTypeAuthenticate && action.Value != "" {
			challenge = action.Value
		}
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}

	_ = c.JSON(status, errs.HTTPError{
		Code:     code,
		Message:  message,
		Status:   status,
		Override: override,
		Errors:   fieldErrors,
		Action:   action,
	})
}
