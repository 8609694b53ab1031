// Package di provides dependency injection wiring and initialization.
package di

import (
	"context"
	"fmt"

	"github.com/aristath/riskmonitor/internal/clients/yahoo"
	"github.com/aristath/riskmonitor/internal/config"
	"github.com/aristath/riskmonitor/internal/metrics"
	"github.com/aristath/riskmonitor/internal/modules/marketdata"
	"github.com/aristath/riskmonitor/internal/modules/monitor"
	"github.com/aristath/riskmonitor/internal/modules/portfolio"
	"github.com/aristath/riskmonitor/internal/modules/risk"
	"github.com/aristath/riskmonitor/internal/scheduler"
	"github.com/aristath/riskmonitor/internal/sink"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container.
// ctx bounds sink connection setup and is the parent of scheduled runs.
// Order of operations:
// 1. Initialize the sink
// 2. Initialize services
// 3. Register jobs
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	out, err := InitializeSink(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s sink: %w", cfg.Sink, err)
	}

	container := &Container{Sink: out}
	InitializeServices(container, cfg, log)

	if err := RegisterJobs(ctx, container, cfg, log); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().
		Str("sink", out.Name()).
		Str("portfolio", cfg.PortfolioPath).
		Bool("scheduled", container.Scheduler != nil).
		Msg("Dependencies wired")

	return container, nil
}

// InitializeSink builds the sink selected by cfg.Sink
func InitializeSink(ctx context.Context, cfg *config.Config, log zerolog.Logger) (sink.Sink, error) {
	switch cfg.Sink {
	case config.SinkBigQuery:
		return sink.NewBigQuerySink(ctx, sink.BigQueryConfig{
			ProjectID:       cfg.BigQuery.ProjectID,
			DatasetID:       cfg.BigQuery.DatasetID,
			TableID:         cfg.BigQuery.TableID,
			CredentialsPath: cfg.BigQuery.CredentialsPath,
		}, log)
	case config.SinkSQLite:
		return sink.OpenSQLiteSink(cfg.SQLite.Path, log)
	case config.SinkPostgres:
		return sink.OpenPostgresSink(ctx, cfg.Postgres.DSN, cfg.Postgres.Table, log)
	case config.SinkS3:
		return sink.NewS3Sink(ctx, sink.S3Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Format:          cfg.S3.Format,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported sink %q", cfg.Sink)
	}
}

// InitializeServices builds the client, pipeline stages and monitoring service
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.Metrics = metrics.New()
	container.YahooClient = yahoo.NewClient(log)
	container.PortfolioLoader = portfolio.NewLoader(cfg.PortfolioPath, log)

	container.Fetcher = marketdata.NewFetcher(container.YahooClient, marketdata.Config{
		Period:     cfg.Fetch.Period,
		Retries:    cfg.Fetch.Retries,
		RetryDelay: cfg.Fetch.RetryDelay,
	}, log)
	container.Fetcher.SetFailureObserver(func(string, int, error) {
		container.Metrics.FetchFailures.Inc()
	})

	container.Calculator = risk.NewCalculator(log)
	container.MonitorService = monitor.NewService(
		container.PortfolioLoader,
		container.Fetcher,
		container.Calculator,
		container.Sink,
		container.Metrics,
		log,
	)
}

// RegisterJobs creates the scheduler when a schedule is configured
func RegisterJobs(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if cfg.Schedule == "" {
		return nil
	}

	sched := scheduler.New(log)
	job := scheduler.NewRiskSnapshotJob(ctx, container.MonitorService, cfg.HTTPWriteTimeout, log)
	if err := sched.AddJob(cfg.Schedule, job); err != nil {
		return fmt.Errorf("invalid RISK_SCHEDULE %q: %w", cfg.Schedule, err)
	}

	container.Scheduler = sched
	return nil
}
