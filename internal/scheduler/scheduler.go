// Package scheduler runs minute-aligned jobs in a fixed time zone.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work. A nil Due fires on every tick.
type Job struct {
	Name string
	Due  func(local time.Time) bool
	Run  func(ctx context.Context, at time.Time) error
}

// Options configures a Scheduler.
type Options struct {
	Location *time.Location
	Interval time.Duration
	Locker   Locker
	Clock    func() time.Time
}

// Scheduler fires due jobs once per interval.
type Scheduler struct {
	log      *zap.SugaredLogger
	loc      *time.Location
	interval time.Duration
	locker   Locker
	now      func() time.Time
	jobs     []Job
}

// New builds a scheduler.
func New(log *zap.SugaredLogger, opts Options, jobs ...Job) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Locker == nil {
		opts.Locker = NopLocker{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Scheduler{
		log:      log.Named("scheduler"),
		loc:      opts.Location,
		interval: opts.Interval,
		locker:   opts.Locker,
		now:      opts.Clock,
		jobs:     jobs,
	}
}

// Run blocks until ctx is done, ticking on interval boundaries.
func (s *Scheduler) Run(ctx context.Context) error {
	next := s.now().Truncate(s.interval).Add(s.interval)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	s.log.Infow("scheduler started", "interval", s.interval, "location", s.loc.String(), "jobs", len(s.jobs))
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("scheduler stopped")
			return nil
		case <-timer.C:
			s.Tick(ctx, next)

			now := s.now()
			next = next.Add(s.interval)
			for !next.After(now) {
				s.log.Warnw("scheduler tick skipped", "at", next)
				next = next.Add(s.interval)
			}
			timer.Reset(next.Sub(now))
		}
	}
}

// Tick runs every job due at t and returns how many ran. Job errors are
// logged and never returned.
func (s *Scheduler) Tick(ctx context.Context, t time.Time) int {
	local := t.In(s.loc).Truncate(time.Minute)
	ran := 0
	for _, job := range s.jobs {
		if job.Due != nil && !job.Due(local) {
			continue
		}

		key := job.Name + ":" + local.Format("200601021504")
		ok, err := s.locker.Acquire(ctx, key, 2*s.interval)
		if err != nil {
			s.log.Warnw("tick lock unavailable, running anyway", "job", job.Name, "error", err)
			ok = true
		}
		if !ok {
			s.log.Debugw("tick owned by another replica", "job", job.Name, "key", key)
			continue
		}

		tickID := uuid.NewString()
		start := time.Now()
		jobCtx, cancel := context.WithTimeout(ctx, s.interval)
		err = job.Run(jobCtx, local)
		cancel()
		ran++

		if err != nil {
			s.log.Errorw("job failed", "job", job.Name, "tick_id", tickID, "at", local.Format(time.RFC3339), "error", err)
			continue
		}
		s.log.Debugw("job done", "job", job.Name, "tick_id", tickID, "duration_ms", time.Since(start).Milliseconds())
	}
	return ran
}

// WeeklyAt is due at hour:minute on weekday.
func WeeklyAt(weekday time.Weekday, hour, minute int) func(time.Time) bool {
	return func(local time.Time) bool {
		return local.Weekday() == weekday && local.Hour() == hour && local.Minute() == minute
	}
}
