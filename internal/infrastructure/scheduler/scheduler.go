package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/SapotaDA/TaskFlow/pkg/logger"
)

var (
	scanRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskflow_scan_runs_total",
		Help: "Completed scan runs per job.",
	}, []string{"job", "result"})

	ticksDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskflow_scan_ticks_dropped_total",
		Help: "Ticks dropped because the previous run was still in progress.",
	}, []string{"job"})
)

// State is the explicit per-job run state. A tick only starts a run from
// Idle; ticks that arrive while Running are dropped, never queued.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// RunFunc is one scan tick. It must honor ctx cancellation at its own
// store and email calls; the scheduler gives no overall deadline.
type RunFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	run      RunFunc

	mu    sync.Mutex
	state State
}

// tryRun transitions Idle -> Running, executes, then returns to Idle.
// It reports false when the tick was dropped because a run was active.
func (j *job) tryRun(ctx context.Context, log *logger.Logger) bool {
	j.mu.Lock()
	if j.state != Idle {
		j.mu.Unlock()
		log.Warn("Scan tick dropped, previous run still in progress",
			zap.String("job", j.name),
		)
		ticksDropped.WithLabelValues(j.name).Inc()
		return false
	}
	j.state = Running
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.state = Idle
		j.mu.Unlock()
	}()

	start := time.Now()
	if err := j.run(ctx); err != nil {
		log.Error("Scan run failed",
			zap.String("job", j.name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		scanRuns.WithLabelValues(j.name, "error").Inc()
		return true
	}

	log.Info("Scan run completed",
		zap.String("job", j.name),
		zap.Duration("duration", time.Since(start)),
	)
	scanRuns.WithLabelValues(j.name, "ok").Inc()
	return true
}

// Scheduler owns the periodic timers for the background scanners. It is
// the only process-wide mutable state in the subsystem: each job's
// Idle/Running value lives in the job struct, not in package globals.
type Scheduler struct {
	logger *logger.Logger
	jobs   []*job
	wg     sync.WaitGroup
}

// New creates an empty scheduler.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{logger: log}
}

// Register adds a named periodic job. Must be called before Start.
func (s *Scheduler) Register(name string, interval time.Duration, run RunFunc) {
	s.jobs = append(s.jobs, &job{
		name:     name,
		interval: interval,
		run:      run,
	})
}

// Start launches one timer loop per job. Each job runs once immediately,
// then on every tick. Runs execute on their own goroutine so the loop
// keeps draining the ticker; a tick landing mid-run therefore reaches
// the Idle check and is dropped, never buffered behind the active run.
// Cancelling ctx stops future ticks; in-flight work is abandoned at its
// next ctx check, which is acceptable because the next run re-derives
// candidates from durable state.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.logger.Info("Scheduler job starting",
			zap.String("job", j.name),
			zap.Duration("interval", j.interval),
		)

		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()

			s.dispatch(ctx, j)

			ticker := time.NewTicker(j.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					s.logger.Info("Scheduler job stopped", zap.String("job", j.name))
					return
				case <-ticker.C:
					s.dispatch(ctx, j)
				}
			}
		}(j)
	}
}

// dispatch hands one tick to the job without blocking the timer loop.
func (s *Scheduler) dispatch(ctx context.Context, j *job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		j.tryRun(ctx, s.logger)
	}()
}

// Wait blocks until all job loops and dispatched runs have exited after
// ctx cancellation.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
