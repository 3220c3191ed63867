package repository

import (
	"context"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/record"
)

// The export keeps whatever columns the procedure declares, in order.
const routeStatisticsSQL = `select * from route_statistics($1, $2)`

// ReportRepository reads tabular reports.
type ReportRepository struct{}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// RouteStatistics returns route statistics for the period. nil bounds are
// passed as NULL and left open by the procedure.
func (r *ReportRepository) RouteStatistics(ctx context.Context, q database.Querier, dateStart, dateEnd any) (*record.Table, error) {
	return database.Table(ctx, q, routeStatisticsSQL, dateStart, dateEnd)
}
