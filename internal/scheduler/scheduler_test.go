package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name        string
	runs        int
	err         error
	sawDeadline bool
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	_, j.sawDeadline = ctx.Deadline()
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestAddJobValidatesSchedule(t *testing.T) {
	s := newTestScheduler()

	assert.Error(t, s.AddJob("not a schedule", &countingJob{name: "bad"}))
	assert.NoError(t, s.AddJob("0 0 3 * * *", &countingJob{name: "nightly"}))
	assert.NoError(t, s.AddJob("@hourly", &countingJob{name: "hourly"}))
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler()

	job := &countingJob{name: "manual"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)
	assert.True(t, job.sawDeadline)

	failing := &countingJob{name: "failing", err: errors.New("boom")}
	assert.Error(t, s.RunNow(failing))
	assert.Equal(t, 1, failing.runs)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob("@every 1h", &countingJob{name: "idle"}))

	s.Start()
	s.Stop()
}
