package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/riskmonitor/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:             8080,
		HTTPWriteTimeout: time.Minute,
		PortfolioPath:    filepath.Join(dir, "portfolio.json"),
		Sink:             config.SinkSQLite,
		SQLite:           config.SQLiteConfig{Path: filepath.Join(dir, "risk.db")},
		Fetch:            config.FetchConfig{Period: "7d", Retries: 3, RetryDelay: time.Second},
	}
}

func TestWire(t *testing.T) {
	cfg := sqliteConfig(t)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.Equal(t, "sqlite", container.Sink.Name())
	assert.NotNil(t, container.YahooClient)
	assert.NotNil(t, container.PortfolioLoader)
	assert.NotNil(t, container.Fetcher)
	assert.NotNil(t, container.Calculator)
	assert.NotNil(t, container.MonitorService)
	assert.NotNil(t, container.Metrics)
	assert.Nil(t, container.Scheduler, "no schedule configured")
}

func TestWire_WithSchedule(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Schedule = "0 30 21 * * MON-FRI"

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.NotNil(t, container.Scheduler)
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Schedule = "every tuesday"

	_, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_SCHEDULE")
}

func TestInitializeSink_Unsupported(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Sink = "kafka"

	_, err := InitializeSink(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeSink_S3(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Sink = config.SinkS3
	cfg.S3 = config.S3Config{
		Bucket:          "risk",
		Prefix:          "risk",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Format:          "jsonl",
	}

	s, err := InitializeSink(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "s3", s.Name())
}
