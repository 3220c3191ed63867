package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/middleware"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth reports liveness and, when a monitor account is configured,
// whether the ERP database accepts a login.
//
// It returns 200 when every check passes and 503 otherwise. Checks that
// cannot run are reported as "skipped" and do not fail the response.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      make(map[string]interface{}),
	}

	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	observability := h.server.Config.Observability
	dbConfig := h.server.Config.Database

	switch {
	case observability == nil || !observability.HasCheck("database"):
		checks["database"] = map[string]interface{}{"status": "skipped", "reason": "disabled"}
	case dbConfig.MonitorUser == "":
		checks["database"] = map[string]interface{}{"status": "skipped", "reason": "no monitor user"}
	default:
		ctx, cancel := context.WithTimeout(c.Request().Context(), observability.HealthChecks.Timeout)
		defer cancel()

		dbStart := time.Now()

		if err := h.checkDatabase(ctx, dbConfig.MonitorUser, dbConfig.MonitorPassword); err != nil {
			checks["database"] = map[string]interface{}{
				"status":        "unhealthy",
				"response_time": time.Since(dbStart).String(),
				"error":         err.Error(),
			}

			isHealthy = false

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(dbStart)).
				Msg("database health check failed")

			h.recordHealthEvent(map[string]interface{}{
				"check_type":       "database",
				"operation":        "health_check",
				"error_type":       "database_unhealthy",
				"response_time_ms": time.Since(dbStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		} else {
			checks["database"] = map[string]interface{}{
				"status":        "healthy",
				"response_time": time.Since(dbStart).String(),
			}

			logger.Debug().
				Dur("response_time", time.Since(dbStart)).
				Msg("database health check passed")
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthEvent(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// checkDatabase logs in as the monitor account and runs a trivial query.
func (h *HealthHandler) checkDatabase(ctx context.Context, user, password string) error {
	session, err := h.server.DB.Open(ctx, user, password)
	if err != nil {
		return fmt.Errorf("failed to open monitor session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			zerolog.Ctx(ctx).Warn().Err(closeErr).Msg("failed to close monitor session")
		}
	}()

	if _, _, err := database.Scalar(ctx, session, "select 1"); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}

	return nil
}

func (h *HealthHandler) recordHealthEvent(params map[string]interface{}) {
	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", params)
	}
}
