package cycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
)

// Runner drives Service.RunCycle on a fixed interval. At most one cycle runs
// at a time; a tick that fires while a cycle is running is dropped.
type Runner struct {
	svc     *Service
	metrics *metrics.ReminderMetrics

	running  atomic.Bool
	skipped  atomic.Int64
	interval atomic.Int64
	reset    chan time.Duration
	wg       sync.WaitGroup
}

func NewRunner(svc *Service, interval time.Duration, m *metrics.ReminderMetrics) *Runner {
	r := &Runner{
		svc:     svc,
		metrics: m,
		reset:   make(chan time.Duration, 1),
	}
	r.interval.Store(int64(interval))
	return r
}

func (r *Runner) Interval() time.Duration {
	return time.Duration(r.interval.Load())
}

// SetInterval changes the tick period starting with the next tick.
func (r *Runner) SetInterval(d time.Duration) {
	if d <= 0 || d == r.Interval() {
		return
	}
	r.interval.Store(int64(d))
	for {
		select {
		case r.reset <- d:
			return
		default:
		}
		// Replace a reset that Run has not consumed yet.
		select {
		case <-r.reset:
		default:
		}
	}
}

func (r *Runner) Skipped() int64 {
	return r.skipped.Load()
}

// Run starts with an immediate cycle and then ticks until ctx is done. It
// waits for an in-flight cycle before returning.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	slog.InfoContext(ctx, "poll loop started",
		slog.Duration("interval", r.Interval()),
	)

	r.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			r.wg.Wait()
			slog.InfoContext(ctx, "poll loop stopped")
			return nil
		case d := <-r.reset:
			ticker.Reset(d)
			slog.InfoContext(ctx, "poll interval changed",
				slog.Duration("interval", d),
			)
		case <-ticker.C:
			r.dispatch(ctx)
		}
	}
}

func (r *Runner) dispatch(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		_, err := r.TryRun(ctx, false)
		if errors.Is(err, domain.ErrCycleInProgress) {
			r.skipped.Add(1)
			if r.metrics != nil {
				r.metrics.RecordSkippedTick(ctx)
			}
			slog.DebugContext(ctx, "tick skipped, cycle still running",
				slog.String("event", "tick_skipped"),
			)
		}
	}()
}

// TryRun runs a cycle unless one is already running, in which case it
// returns domain.ErrCycleInProgress without waiting.
func (r *Runner) TryRun(ctx context.Context, force bool) (domain.CycleRecord, error) {
	if !r.running.CompareAndSwap(false, true) {
		return domain.CycleRecord{}, domain.ErrCycleInProgress
	}
	defer r.running.Store(false)

	return r.svc.RunCycle(ctx, force)
}

func (r *Runner) Running() bool {
	return r.running.Load()
}
