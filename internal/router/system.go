package router

import (
	"github.com/deppfellow/erp-gateway/internal/handler"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the ERP
// API. None of them require credentials.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	if s.Metrics != nil {
		r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}

	r.GET("/openapi.json", h.OpenAPI.ServeSpec)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
