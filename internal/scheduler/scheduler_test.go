package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/metrics"
)

type fixedCounter struct {
	n   int
	err error
}

func (c *fixedCounter) Count(ctx context.Context) (int, error) { return c.n, c.err }

func TestSchedulerRestart(t *testing.T) {
	cfg := &config.SchedulerConfig{Enabled: true, Interval: "@every 1h"}
	sched := NewScheduler(cfg, &fixedCounter{}, metrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	assert.False(t, sched.GetNextRun().IsZero())
	assert.Error(t, sched.Start())

	require.NoError(t, sched.Stop())
	assert.False(t, sched.IsRunning())
	assert.True(t, sched.GetNextRun().IsZero())

	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	require.NotNil(t, sched.ctx)
	assert.NoError(t, sched.ctx.Err())
	require.NoError(t, sched.Stop())
}

func TestSchedulerInvalidInterval(t *testing.T) {
	cfg := &config.SchedulerConfig{Enabled: true, Interval: "every now and then"}
	sched := NewScheduler(cfg, &fixedCounter{}, metrics.NewMetrics(prometheus.NewRegistry()))

	assert.Error(t, sched.Start())
	assert.False(t, sched.IsRunning())
}

func TestRunOnceUpdatesGauge(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	counter := &fixedCounter{n: 7}
	sched := NewScheduler(&config.SchedulerConfig{Interval: "@every 1h"}, counter, m)

	assert.True(t, sched.GetLastRun().IsZero())

	require.NoError(t, sched.RunOnce())
	assert.Equal(t, 7, sched.LastCount())
	assert.Equal(t, 7.0, testutil.ToFloat64(m.GreetingsTotal))
	lastRun := sched.GetLastRun()
	assert.False(t, lastRun.IsZero())

	counter.err = errors.New("store unavailable")
	assert.Error(t, sched.RunOnce())
	assert.Equal(t, 7, sched.LastCount())
	assert.Equal(t, lastRun, sched.GetLastRun())
}
