// Package scheduler runs background jobs on a daily wall-clock schedule.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"moneymanager/internal/logger"
)

// Job is one scheduled unit of work. now is the UTC instant the run fired.
type Job func(ctx context.Context, now time.Time) error

// Daily runs a job once per day at a fixed UTC hour.
type Daily struct {
	name       string
	hour       int
	runOnStart bool
	job        Job
	now        func() time.Time
	log        *zap.SugaredLogger
}

// NewDaily creates a daily schedule. hour is clamped to [0, 23].
func NewDaily(name string, hour int, runOnStart bool, job Job) *Daily {
	if hour < 0 {
		hour = 0
	}
	if hour > 23 {
		hour = 23
	}
	return &Daily{
		name:       name,
		hour:       hour,
		runOnStart: runOnStart,
		job:        job,
		now:        time.Now,
		log:        logger.Named("scheduler").With("job", name),
	}
}

// Run blocks until ctx is cancelled. A failing job is logged and retried at
// the next scheduled time.
func (d *Daily) Run(ctx context.Context) error {
	if d.runOnStart {
		d.fire(ctx)
	}

	for {
		next := nextRun(d.now().UTC(), d.hour)
		d.log.Infow("next run scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			d.log.Info("scheduler stopped")
			return nil
		case <-timer.C:
			d.fire(ctx)
		}
	}
}

func (d *Daily) fire(ctx context.Context) {
	start := d.now().UTC()
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("job panicked", "panic", r)
		}
	}()

	if err := d.job(ctx, start); err != nil {
		d.log.Errorw("job failed", "error", err, "duration", time.Since(start))
		return
	}
	d.log.Infow("job completed", "duration", time.Since(start))
}

// nextRun returns the first instant strictly after now at hour:00 UTC.
func nextRun(now time.Time, hour int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
