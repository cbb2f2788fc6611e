package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BoundaryScheduler invokes a job at every wall-clock multiple of Interval
// (for five minutes: :00, :05, ... :55).
type BoundaryScheduler struct {
	Interval   time.Duration
	RunOnStart bool
	Logger     *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func New(interval time.Duration, runOnStart bool, logger *zap.Logger) *BoundaryScheduler {
	return &BoundaryScheduler{
		Interval:   interval,
		RunOnStart: runOnStart,
		Logger:     logger,
		now:        time.Now,
		after:      time.After,
	}
}

// NextRun returns the first boundary strictly after now. Boundaries are
// computed on local wall-clock time.
func NextRun(now time.Time, interval time.Duration) time.Time {
	_, offset := now.Zone()
	shift := time.Duration(offset) * time.Second
	// Truncate works on absolute time; shift into local time so that
	// sub-hour zone offsets still land on local boundaries.
	next := now.Add(shift).Truncate(interval).Add(interval).Add(-shift)
	if !next.After(now) {
		next = next.Add(interval)
	}
	return next
}

// Run blocks, calling job once per boundary until ctx is cancelled. A job
// that overruns the next boundary delays the following run to the boundary
// after it finishes.
func (s *BoundaryScheduler) Run(ctx context.Context, job func(context.Context)) error {
	if s.RunOnStart {
		job(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := s.now()
		next := NextRun(now, s.Interval)
		wait := next.Sub(now)

		s.Logger.Info("waiting until next run",
			zap.Duration("wait", wait.Round(time.Second)),
			zap.String("next_run", next.Format("2006-01-02 15:04:05")),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(wait):
		}

		job(ctx)
	}
}
