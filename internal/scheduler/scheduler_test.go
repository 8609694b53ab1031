package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/aristath/riskmonitor/internal/modules/monitor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	report *domain.RunReport
	err    error
	ctx    context.Context
	calls  chan struct{}
}

func (s *stubRunner) Run(ctx context.Context) (*domain.RunReport, error) {
	s.ctx = ctx
	if s.calls != nil {
		s.calls <- struct{}{}
	}
	return s.report, s.err
}

func TestRiskSnapshotJob_Run(t *testing.T) {
	runner := &stubRunner{report: &domain.RunReport{RunID: "r1", Inserted: 2}}
	job := NewRiskSnapshotJob(context.Background(), runner, time.Minute, zerolog.Nop())

	assert.Equal(t, "risk_snapshot", job.Name())
	require.NoError(t, job.Run())

	deadline, ok := runner.ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestRiskSnapshotJob_NoValidDataIsNotFailure(t *testing.T) {
	runner := &stubRunner{report: &domain.RunReport{}, err: monitor.ErrNoValidData}
	job := NewRiskSnapshotJob(context.Background(), runner, 0, zerolog.Nop())

	assert.NoError(t, job.Run())
}

func TestRiskSnapshotJob_PropagatesFailure(t *testing.T) {
	runner := &stubRunner{report: &domain.RunReport{}, err: errors.New("sink down")}
	job := NewRiskSnapshotJob(context.Background(), runner, 0, zerolog.Nop())

	assert.EqualError(t, job.Run(), "sink down")
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	job := NewRiskSnapshotJob(context.Background(), &stubRunner{}, 0, zerolog.Nop())

	assert.Error(t, s.AddJob("not a schedule", job))
	// Five fields are rejected; the seconds field is required
	assert.Error(t, s.AddJob("30 21 * * *", job))
	assert.NoError(t, s.AddJob("0 30 21 * * MON-FRI", job))
}

func TestScheduler_RunsJob(t *testing.T) {
	runner := &stubRunner{report: &domain.RunReport{RunID: "r1"}, calls: make(chan struct{}, 4)}
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1s", NewRiskSnapshotJob(context.Background(), runner, 0, zerolog.Nop())))

	s.Start()
	defer s.StopContext(context.Background())

	select {
	case <-runner.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
