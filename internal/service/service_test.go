package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/deppfellow/erp-gateway/internal/database/databasetest"
	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/deppfellow/erp-gateway/internal/metrics"
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Logger:  &logger,
		Metrics: metrics.NewRegistry(),
	}
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	s := newTestServer()
	services, err := NewService(s, repository.NewRepositories(s))
	require.NoError(t, err)
	return services
}

// answer routes queries to scripted rows by a fragment of their SQL.
func answer(routes map[string]func() pgx.Rows) databasetest.QueryFunc {
	return func(sql string, args []any) (pgx.Rows, error) {
		for fragment, rows := range routes {
			if strings.Contains(sql, fragment) {
				return rows(), nil
			}
		}
		return databasetest.NewRows(nil), nil
	}
}

func requireHTTPError(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %v", err)
	assert.Equal(t, status, httpErr.Status)
	return httpErr
}

func TestBOMService_GetInfo(t *testing.T) {
	services := newTestServices(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		session := databasetest.NewSession(answer(map[string]func() pgx.Rows{
			"bom_info": func() pgx.Rows {
				return databasetest.NewRows(
					[]databasetest.Column{databasetest.Int("id"), databasetest.Text("description")},
					[]any{int64(19818), "Плата управления"},
				)
			},
		}))

		row, err := services.BOM.GetInfo(ctx, session, 19818)

		require.NoError(t, err)
		id, _ := row.Get("id")
		assert.Equal(t, int64(19818), id)
		require.Len(t, session.Queries(), 1)
		assert.Equal(t, []any{int64(19818)}, session.Queries()[0].Args)
	})

	t.Run("missing", func(t *testing.T) {
		session := databasetest.NewSession(nil)

		_, err := services.BOM.GetInfo(ctx, session, 1)

		httpErr := requireHTTPError(t, err, http.StatusNotFound)
		assert.Equal(t, "Записей не найдено", httpErr.Message)
	})
}

func TestBOMService_ListPassesNullFilters(t *testing.T) {
	services := newTestServices(t)
	session := databasetest.NewSession(nil)

	rows, err := services.BOM.List(context.Background(), session, repository.BOMFilter{Descript: "Плата"})

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	require.Len(t, session.Queries(), 1)
	assert.Equal(t, []any{nil, "Плата", nil}, session.Queries()[0].Args)
}

func TestDeviceCardService_GetRepairsWithBitrixDeals(t *testing.T) {
	services := newTestServices(t)
	session := databasetest.NewSession(answer(map[string]func() pgx.Rows{
		"repairs_by_serial_number": func() pgx.Rows {
			return databasetest.NewRows(
				[]databasetest.Column{databasetest.Int("id"), databasetest.Int("repairOrderId")},
				[]any{int64(1), int32(100)},
				[]any{int64(2), int32(200)},
			)
		},
		"bitrix_deals_by_serial_number": func() pgx.Rows {
			return databasetest.NewRows(
				[]databasetest.Column{databasetest.Int("repairOrderId"), databasetest.Int("number")},
				[]any{int64(100), int64(5001)},
				[]any{int64(100), int64(5002)},
			)
		},
	}))

	repairs, err := services.DeviceCard.GetRepairsWithBitrixDeals(context.Background(), session, "SN-1")

	require.NoError(t, err)
	require.Len(t, repairs, 2)

	deals, _ := repairs[0].Get(BitrixDealsField)
	assert.Equal(t, []BitrixDeal{{Number: int64(5001)}, {Number: int64(5002)}}, deals)
	deals, _ = repairs[1].Get(BitrixDealsField)
	assert.Equal(t, []BitrixDeal{}, deals)

	for _, q := range session.Queries() {
		assert.Equal(t, []any{"SN-1"}, q.Args)
	}
}

func TestDeviceCardService_CreateBitrixDeal(t *testing.T) {
	services := newTestServices(t)
	ctx := context.Background()

	result := func(value any) databasetest.QueryFunc {
		return func(sql string, args []any) (pgx.Rows, error) {
			return databasetest.NewRows([]databasetest.Column{databasetest.Int("res_id")}, []any{value}), nil
		}
	}

	t.Run("created", func(t *testing.T) {
		session := databasetest.NewSession(result(int32(77)))

		id, err := services.DeviceCard.CreateBitrixDeal(ctx, session, 10, 5001)

		require.NoError(t, err)
		assert.Equal(t, int64(77), id)
		assert.Equal(t, []any{int64(10), int64(5001)}, session.Queries()[0].Args)
	})

	for name, fn := range map[string]databasetest.QueryFunc{
		"zero":   result(int32(0)),
		"null":   result(nil),
		"no row": nil,
	} {
		t.Run(name, func(t *testing.T) {
			session := databasetest.NewSession(fn)

			id, err := services.DeviceCard.CreateBitrixDeal(ctx, session, 10, 5001)

			httpErr := requireHTTPError(t, err, http.StatusNotAcceptable)
			assert.Equal(t, "Сделка битрикс не была создана.", httpErr.Message)
			assert.Zero(t, id)
		})
	}

	t.Run("driver error is passed through", func(t *testing.T) {
		session := databasetest.NewSession(func(sql string, args []any) (pgx.Rows, error) {
			return nil, errors.New("connection reset")
		})

		_, err := services.DeviceCard.CreateBitrixDeal(ctx, session, 10, 5001)

		require.Error(t, err)
		var httpErr *errs.HTTPError
		assert.False(t, errors.As(err, &httpErr))
	})
}

func TestDeviceCardService_DeleteBitrixDeal(t *testing.T) {
	services := newTestServices(t)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		session := databasetest.NewSession(func(sql string, args []any) (pgx.Rows, error) {
			return databasetest.NewRows([]databasetest.Column{databasetest.Int("res")}, []any{int64(1)}), nil
		})

		require.NoError(t, services.DeviceCard.DeleteBitrixDeal(ctx, session, 10, 5001))
	})

	t.Run("missing link", func(t *testing.T) {
		session := databasetest.NewSession(func(sql string, args []any) (pgx.Rows, error) {
			return databasetest.NewRows([]databasetest.Column{databasetest.Int("res")}, []any{int64(0)}), nil
		})

		err := services.DeviceCard.DeleteBitrixDeal(ctx, session, 10, 5001)

		httpErr := requireHTTPError(t, err, http.StatusNotFound)
		assert.Equal(t, "Не удалено. Не существует связки сделки битрикс и заказа в ремонт.", httpErr.Message)
	})
}

func TestDeviceCardService_SingleRowLookupsReturnNotFound(t *testing.T) {
	services := newTestServices(t)
	ctx := context.Background()
	session := databasetest.NewSession(nil)

	_, err := services.DeviceCard.GetNomenclature(ctx, session, "SN-404")
	requireHTTPError(t, err, http.StatusNotFound)

	_, err = services.DeviceCard.GetOrder(ctx, session, "SN-404")
	requireHTTPError(t, err, http.StatusNotFound)

	_, err = services.DeviceCard.GetRepair(ctx, session, 404)
	requireHTTPError(t, err, http.StatusNotFound)

	_, err = services.DeviceCard.GetRepairOrderByRepair(ctx, session, 404)
	requireHTTPError(t, err, http.StatusNotFound)
}
