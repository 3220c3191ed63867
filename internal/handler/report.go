package handler

import (
	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/middleware"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/service"
	"github.com/deppfellow/erp-gateway/internal/validation"
	"github.com/labstack/echo/v4"
)

// ReportHandler serves CSV exports.
type ReportHandler struct {
	Handler
	service *service.ReportService
}

func NewReportHandler(s *server.Server, reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		Handler: NewHandler(s),
		service: reportService,
	}
}

// RouteStatisticsRequest bounds the export period. Either date may be
// omitted to leave that side open.
type RouteStatisticsRequest struct {
	DateStart validation.Date `query:"date_start" doc:"Дата начала поиска в формате yyyy-MM-dd"`
	DateEnd   validation.Date `query:"date_end" doc:"Дата окончания поиска в формате yyyy-MM-dd"`
}

// Validate has nothing to check beyond the date format enforced on bind.
func (r *RouteStatisticsRequest) Validate() error {
	return nil
}

// RouteStatistics returns the CSV document. The request id names the
// archived copy, when archiving is enabled.
func (h *ReportHandler) RouteStatistics(c echo.Context, db database.Querier, req *RouteStatisticsRequest) ([]byte, error) {
	return h.service.RouteStatistics(
		c.Request().Context(), db,
		req.DateStart.Arg(), req.DateEnd.Arg(),
		middleware.GetRequestID(c),
	)
}
