package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/rs/zerolog"
)

const (
	// CSVContentType is the media type of every export.
	CSVContentType = "text/csv"

	// RouteStatisticsFile is the attachment name of the route statistics export.
	RouteStatisticsFile = "route_statistics.csv"
)

// Archiver keeps a copy of an export. *archive.Store implements it.
type Archiver interface {
	Put(ctx context.Context, day time.Time, id string, contentType string, body []byte) (string, error)
}

type ReportService struct {
	server  *server.Server
	repo    *repository.ReportRepository
	archive Archiver
	now     func() time.Time
}

func NewReportService(s *server.Server, repo *repository.ReportRepository) *ReportService {
	service := &ReportService{server: s, repo: repo, now: time.Now}
	if s.Archive != nil {
		service.archive = s.Archive
	}
	return service
}

// RouteStatistics renders route statistics for the period as CSV.
//
// When the archive is enabled the document is also stored under exportID.
// Archive failures are logged and counted; the caller still gets the
// export.
func (s *ReportService) RouteStatistics(ctx context.Context, q database.Querier, dateStart, dateEnd any, exportID string) ([]byte, error) {
	table, err := s.repo.RouteStatistics(ctx, q, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}

	body, err := MakeCSV(table)
	if err != nil {
		return nil, err
	}

	s.archiveExport(ctx, exportID, body)

	return body, nil
}

func (s *ReportService) archiveExport(ctx context.Context, exportID string, body []byte) {
	if s.archive == nil || exportID == "" {
		return
	}

	logger := zerolog.Ctx(ctx)
	outcome := "ok"

	key, err := s.archive.Put(ctx, s.now(), exportID, CSVContentType, body)
	if err != nil {
		outcome = "failed"
		logger.Error().Err(err).Str("export_id", exportID).Msg("failed to archive csv export")
	} else {
		logger.Info().Str("key", key).Int("bytes", len(body)).Msg("csv export archived")
	}

	if s.server.Metrics != nil {
		s.server.Metrics.ArchiveUploads.WithLabelValues(outcome).Inc()
	}
}

// MakeCSV writes table as CSV: the column names, then one record per row.
// Records end with CRLF and fields are quoted only when needed.
func MakeCSV(table *record.Table) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(table.Columns); err != nil {
		return nil, err
	}
	for _, values := range table.Records {
		if err := w.Write(record.Strings(values)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
