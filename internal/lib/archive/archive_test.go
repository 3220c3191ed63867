package archive

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/erp-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	day := time.Date(2024, 5, 6, 17, 30, 0, 0, time.UTC)

	assert.Equal(t, "csv_reports/2024-05-06/abc.csv", Key("csv_reports", day, "abc"))
	assert.Equal(t, "2024-05-06/abc.csv", Key("", day, "abc"))
	assert.Equal(t, "csv_reports/2024-05-06/______etc.csv", Key("csv_reports", day, "../../etc"))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), config.ArchiveConfig{Enabled: true})

	assert.Error(t, err)
}

func TestNew_WithStaticCredentials(t *testing.T) {
	store, err := New(context.Background(), config.ArchiveConfig{
		Enabled:   true,
		Bucket:    "reports",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
		Prefix:    "csv_reports",
		AccessKey: "minio",
		SecretKey: "minio123",
	})

	require.NoError(t, err)
	assert.Equal(t, "reports", store.bucket)
	assert.Equal(t, "csv_reports", store.prefix)
}
