package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/erp-gateway/internal/database/databasetest"
	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	err   error
	puts  int
	day   time.Time
	id    string
	ctype string
	body  []byte
}

func (f *fakeArchive) Put(ctx context.Context, day time.Time, id string, contentType string, body []byte) (string, error) {
	f.puts++
	f.day, f.id, f.ctype, f.body = day, id, contentType, body
	if f.err != nil {
		return "", f.err
	}
	return "csv_reports/" + day.Format("2006-01-02") + "/" + id + ".csv", nil
}

func TestMakeCSV_RoundTrip(t *testing.T) {
	day := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	table := &record.Table{
		Columns: []string{"route", "note", "count", "day"},
		Records: [][]any{
			{"Склад, цех 2", `говорит "да"`, int64(12), record.NewDate(day)},
			{"line\nbreak", nil, int64(0), nil},
		},
	}

	body, err := MakeCSV(table)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(body, []byte("route,note,count,day\r\n")))

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, table.Columns, records[0])
	assert.Equal(t, []string{"Склад, цех 2", `говорит "да"`, "12", "2024-01-31"}, records[1])
	assert.Equal(t, []string{"line\nbreak", "", "0", ""}, records[2])
}

func TestMakeCSV_DuplicateColumnNames(t *testing.T) {
	rows := databasetest.NewRows(
		[]databasetest.Column{databasetest.Text("name"), databasetest.Text("name"), databasetest.Int("n")},
		[]any{"route A", "driver B", int64(3)},
	)
	table, err := record.Collect(rows)
	require.NoError(t, err)

	body, err := MakeCSV(table)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "name", "n"}, {"route A", "driver B", "3"}}, records)
}

func TestMakeCSV_EmptyTableKeepsHeader(t *testing.T) {
	body, err := MakeCSV(&record.Table{Columns: []string{"a", "b"}})

	require.NoError(t, err)
	assert.Equal(t, "a,b\r\n", string(body))
}

func routeStatisticsSession() *databasetest.Session {
	return databasetest.NewSession(func(sql string, args []any) (pgx.Rows, error) {
		return databasetest.NewRows(
			[]databasetest.Column{databasetest.Text("route"), databasetest.Int("count")},
			[]any{"A", int64(3)},
		), nil
	})
}

func TestReportService_RouteStatistics(t *testing.T) {
	services := newTestServices(t)
	session := routeStatisticsSession()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	body, err := services.Report.RouteStatistics(context.Background(), session, start, nil, "req-1")

	require.NoError(t, err)
	assert.Equal(t, "route,count\r\nA,3\r\n", string(body))
	require.Len(t, session.Queries(), 1)
	assert.Equal(t, []any{start, nil}, session.Queries()[0].Args)
}

func TestReportService_Archive(t *testing.T) {
	fixed := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("stores a copy", func(t *testing.T) {
		services := newTestServices(t)
		archive := &fakeArchive{}
		services.Report.archive = archive
		services.Report.now = func() time.Time { return fixed }

		body, err := services.Report.RouteStatistics(context.Background(), routeStatisticsSession(), nil, nil, "req-1")

		require.NoError(t, err)
		assert.Equal(t, 1, archive.puts)
		assert.Equal(t, fixed, archive.day)
		assert.Equal(t, "req-1", archive.id)
		assert.Equal(t, CSVContentType, archive.ctype)
		assert.Equal(t, body, archive.body)
		assert.Equal(t, 1.0, testutil.ToFloat64(services.Report.server.Metrics.ArchiveUploads.WithLabelValues("ok")))
	})

	t.Run("failure does not fail the export", func(t *testing.T) {
		services := newTestServices(t)
		archive := &fakeArchive{err: errors.New("bucket unavailable")}
		services.Report.archive = archive

		body, err := services.Report.RouteStatistics(context.Background(), routeStatisticsSession(), nil, nil, "req-2")

		require.NoError(t, err)
		assert.NotEmpty(t, body)
		assert.Equal(t, 1.0, testutil.ToFloat64(services.Report.server.Metrics.ArchiveUploads.WithLabelValues("failed")))
	})

	t.Run("disabled", func(t *testing.T) {
		services := newTestServices(t)

		_, err := services.Report.RouteStatistics(context.Background(), routeStatisticsSession(), nil, nil, "req-3")

		require.NoError(t, err)
		assert.Nil(t, services.Report.archive)
	})
}
