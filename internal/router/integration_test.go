package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/deppfellow/erp-gateway/internal/config"
	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/handler"
	"github.com/deppfellow/erp-gateway/internal/metrics"
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_BOMInfo runs against the test database profile. It is
// skipped unless ERP_GATEWAY_TEST_DATABASE__DSN is set.
func TestIntegration_BOMInfo(t *testing.T) {
	dsn := os.Getenv(config.EnvPrefix + "TEST_DATABASE__DSN")
	if dsn == "" {
		t.Skip("test database is not configured")
	}
	if os.Getenv(config.EnvPrefix+"DATABASE__DSN") == "" {
		t.Setenv(config.EnvPrefix+"DATABASE__DSN", dsn)
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.TestDatabase)

	cfg.Database.DSN = cfg.TestDatabase.DSN
	cfg.Database.Role = cfg.TestDatabase.Role

	logger := zerolog.Nop()
	db, err := database.New(cfg, &logger, nil)
	require.NoError(t, err)

	s := &server.Server{Config: cfg, Logger: &logger, DB: db, Metrics: metrics.NewRegistry()}
	services, err := service.NewService(s, repository.NewRepositories(s))
	require.NoError(t, err)
	router := NewRouter(s, handler.NewHandlers(s, services))

	cases := []struct {
		path   string
		status int
	}{
		{"/api/bom/19818/info", http.StatusOK},
		{"/api/bom/1/info", http.StatusNotFound},
		{"/api/bom/-1/info", http.StatusUnprocessableEntity},
		{"/api/bom/INVALID~ID/info", http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.SetBasicAuth(cfg.TestDatabase.User, cfg.TestDatabase.Password)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}
