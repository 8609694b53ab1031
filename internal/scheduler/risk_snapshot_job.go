package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/aristath/riskmonitor/internal/modules/monitor"
	"github.com/rs/zerolog"
)

// RiskRunner executes one monitoring run
type RiskRunner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}

// RiskSnapshotJob triggers a monitoring run from the scheduler
type RiskSnapshotJob struct {
	runner  RiskRunner
	ctx     context.Context
	timeout time.Duration
	log     zerolog.Logger
}

// NewRiskSnapshotJob creates the job. Runs derive from ctx, so cancelling it
// aborts an in-flight run; timeout bounds a single run (0 for none).
func NewRiskSnapshotJob(ctx context.Context, runner RiskRunner, timeout time.Duration, log zerolog.Logger) *RiskSnapshotJob {
	return &RiskSnapshotJob{
		runner:  runner,
		ctx:     ctx,
		timeout: timeout,
		log:     log.With().Str("job", "risk_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *RiskSnapshotJob) Name() string {
	return "risk_snapshot"
}

// Run executes the monitoring run. A run with nothing to insert is not a failure.
func (j *RiskSnapshotJob) Run() error {
	ctx := j.ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report, err := j.runner.Run(ctx)
	if errors.Is(err, monitor.ErrNoValidData) {
		j.log.Warn().Msg("Scheduled run produced no records")
		return nil
	}
	if err != nil {
		return err
	}

	j.log.Info().
		Str("run_id", report.RunID).
		Int("inserted", report.Inserted).
		Int("breaches", report.BreachCount()).
		Msg("Scheduled risk snapshot stored")
	return nil
}
