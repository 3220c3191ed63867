package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ERP_GATEWAY_DATABASE__DSN", "postgres://erp.local:5432/erp")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Primary.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.Database.ConnectTimeout)
	assert.Nil(t, cfg.TestDatabase)
	assert.False(t, cfg.Archive.Enabled)
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ERP_GATEWAY_PRIMARY__ENV", "production")
	t.Setenv("ERP_GATEWAY_SERVER__PORT", "9000")
	t.Setenv("ERP_GATEWAY_SERVER__CORS_ALLOWED_ORIGINS", "http://localhost:4200, https://erp.example.com")
	t.Setenv("ERP_GATEWAY_DATABASE__DSN", "postgres://erp.local:5432/erp")
	t.Setenv("ERP_GATEWAY_DATABASE__ROLE", "erp_api")
	t.Setenv("ERP_GATEWAY_DATABASE__CONNECT_TIMEOUT", "3")
	t.Setenv("ERP_GATEWAY_TEST_DATABASE__DSN", "postgres://erp.local:5432/erp_test")
	t.Setenv("ERP_GATEWAY_TEST_DATABASE__USER", "tester")
	t.Setenv("ERP_GATEWAY_OBSERVABILITY__LOGGING__LEVEL", "warn")
	t.Setenv("ERP_GATEWAY_OBSERVABILITY__LOGGING__SLOW_REQUEST_THRESHOLD", "750ms")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:4200", "https://erp.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "erp_api", cfg.Database.Role)
	assert.Equal(t, 3, cfg.Database.ConnectTimeout)
	require.NotNil(t, cfg.TestDatabase)
	assert.Equal(t, "tester", cfg.TestDatabase.User)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.Observability.Logging.SlowRequestThreshold)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_MissingDSN(t *testing.T) {
	t.Setenv("ERP_GATEWAY_DATABASE__DSN", "")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestLoadConfig_ArchiveNeedsBucket(t *testing.T) {
	t.Setenv("ERP_GATEWAY_DATABASE__DSN", "postgres://erp.local:5432/erp")
	t.Setenv("ERP_GATEWAY_ARCHIVE__ENABLED", "true")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.HealthChecks.Checks = []string{"ldap"}
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_HasCheck(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	assert.True(t, cfg.HasCheck("database"))

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.HasCheck("database"))
}
