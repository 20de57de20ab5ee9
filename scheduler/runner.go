package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/dengueguard/monitor/metrics"
)

type Task func(ctx context.Context) error

// Runner executes a task periodically. A run never overlaps the previous run of
// the same task, ticks firing while a run is in progress are skipped.
type Runner struct {
	name     string
	interval time.Duration
	task     Task
	logger   *zap.SugaredLogger
	metrics  *metrics.Metrics

	sem    *semaphore.Weighted
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(name string, interval time.Duration, task Task, logger *zap.SugaredLogger, m *metrics.Metrics) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With("task", name),
		metrics:  m,
		sem:      semaphore.NewWeighted(1),
	}
}

// Hook starts the runner with the application and stops it on shutdown
func (r *Runner) Hook() fx.Hook {
	return fx.Hook{
		OnStart: func(context.Context) error {
			r.Start()
			return nil
		},
		OnStop: r.Stop,
	}
}

// Start begins ticking. The first run happens one interval after start.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(ctx)

	r.logger.Infow("background task started", "interval", r.interval.String())
}

// Stop cancels the runner and waits for an in-flight run to return
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Infow("background task stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				r.RunOnce(ctx)
			}()
		}
	}
}

// RunOnce executes the task unless a previous run is still in progress.
// It returns false when the run was skipped.
func (r *Runner) RunOnce(ctx context.Context) bool {
	if !r.sem.TryAcquire(1) {
		r.metrics.TaskRuns.WithLabelValues(r.name, metrics.TaskStatusSkipped).Inc()
		r.logger.Warnw("skipping tick, previous run still in progress")
		return false
	}
	defer r.sem.Release(1)

	start := time.Now()
	err := r.task(ctx)
	r.metrics.TaskDuration.WithLabelValues(r.name).Observe(time.Since(start).Seconds())

	if err != nil {
		r.metrics.TaskRuns.WithLabelValues(r.name, metrics.TaskStatusFailure).Inc()
		r.logger.Errorw("background task failed", "error", err)
	} else {
		r.metrics.TaskRuns.WithLabelValues(r.name, metrics.TaskStatusSuccess).Inc()
	}
	return true
}
