package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SapotaDA/TaskFlow/pkg/logger"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
}

func TestTryRunDropsTickWhileRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	j := &job{
		name:     "slow-scan",
		interval: time.Hour,
		run: func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		},
	}

	log := logger.NewNop()

	firstDone := make(chan bool)
	go func() {
		firstDone <- j.tryRun(context.Background(), log)
	}()

	<-started

	// The first run holds the job in Running; this tick must be dropped.
	assert.False(t, j.tryRun(context.Background(), log))

	close(release)
	assert.True(t, <-firstDone)

	// Back to Idle, the next tick runs again.
	j.run = func(ctx context.Context) error { return nil }
	assert.True(t, j.tryRun(context.Background(), log))
}

func TestTryRunReturnsToIdleAfterError(t *testing.T) {
	j := &job{
		name:     "failing-scan",
		interval: time.Hour,
		run: func(ctx context.Context) error {
			return context.DeadlineExceeded
		},
	}

	log := logger.NewNop()

	// An error run still counts as executed and must release the state.
	assert.True(t, j.tryRun(context.Background(), log))

	j.mu.Lock()
	state := j.state
	j.mu.Unlock()
	assert.Equal(t, Idle, state)
}

func TestSchedulerRunsImmediatelyThenOnTicks(t *testing.T) {
	var runs atomic.Int64

	s := New(logger.NewNop())
	s.Register("fast-scan", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond, "expected an immediate run plus at least one tick")

	cancel()
	s.Wait()
}

func TestSchedulerDropsTicksWhileRunning(t *testing.T) {
	var starts atomic.Int64
	release := make(chan struct{})

	dropped := ticksDropped.WithLabelValues("blocking-scan")
	before := testutil.ToFloat64(dropped)

	s := New(logger.NewNop())
	s.Register("blocking-scan", 25*time.Millisecond, func(ctx context.Context) error {
		starts.Add(1)
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return starts.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// Ticks keep firing while the first run is blocked. Each one must be
	// dropped on arrival and counted, never buffered for a back-to-back
	// run once the blocked one finishes.
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(dropped)-before >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), starts.Load())

	cancel()
	close(release)
	s.Wait()
	assert.Equal(t, int64(1), starts.Load())
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	var runs atomic.Int64

	s := New(logger.NewNop())
	s.Register("one-shot", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.Wait()
	assert.Equal(t, int64(1), runs.Load())
}
