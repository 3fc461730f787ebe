package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is one background task firing once per day at a fixed
// business-local time. The composition root owns the job list; nothing
// registers itself globally.
type Job struct {
	Name         string
	Hour         int
	Minute       int
	WeekdaysOnly bool
	Run          func(ctx context.Context)

	running atomic.Bool
}

// Scheduler drives a fixed set of daily jobs off one ticker. A job
// still running when its next slot comes up is skipped, never queued.
type Scheduler struct {
	jobs     []*Job
	loc      *time.Location
	log      *zap.Logger
	interval time.Duration

	now       func() time.Time // injectable for tests
	lastFired []string         // per job: local date of the last fire
}

// New creates a Scheduler for the given business timezone.
func New(loc *time.Location, log *zap.Logger, jobs []*Job) *Scheduler {
	return &Scheduler{
		jobs:      jobs,
		loc:       loc,
		log:       log,
		interval:  30 * time.Second,
		now:       time.Now,
		lastFired: make([]string, len(jobs)),
	}
}

// Run starts the loop until ctx is canceled. Fire times already in the
// past at startup are treated as fired, so a restart mid-day does not
// replay the morning's jobs.
func (s *Scheduler) Run(ctx context.Context) {
	now := s.now().In(s.loc)
	today := now.Format("2006-01-02")
	for i, j := range s.jobs {
		if minuteOfDay(now) >= j.Hour*60+j.Minute {
			s.lastFired[i] = today
		}
		s.log.Info("job scheduled",
			zap.String("job", j.Name),
			zap.Int("hour", j.Hour),
			zap.Int("minute", j.Minute),
			zap.Bool("weekdays_only", j.WeekdaysOnly),
		)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick fires every job whose slot has arrived today and has not fired yet.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.loc)
	today := now.Format("2006-01-02")

	for i, j := range s.jobs {
		if !s.due(i, j, now, today) {
			continue
		}
		s.lastFired[i] = today

		if !j.running.CompareAndSwap(false, true) {
			s.log.Warn("job still running, skipping", zap.String("job", j.Name))
			continue
		}
		go func(j *Job) {
			defer j.running.Store(false)
			s.log.Info("job firing", zap.String("job", j.Name))
			j.Run(ctx)
		}(j)
	}
}

func (s *Scheduler) due(i int, j *Job, now time.Time, today string) bool {
	if j.WeekdaysOnly {
		wd := now.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	if minuteOfDay(now) < j.Hour*60+j.Minute {
		return false
	}
	return s.lastFired[i] != today
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
