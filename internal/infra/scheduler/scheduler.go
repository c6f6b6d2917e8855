package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PollScheduler decides when the next poll cycle starts.
// It is driven by the caller's loop rather than cron's own goroutines, so cycles never overlap.
type PollScheduler struct {
	schedule cron.Schedule
	logger   *logrus.Entry
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

// NewPollScheduler builds a schedule from a cron spec (e.g. "@every 10m", "*/10 * * * *")
// or, when spec is empty, from a fixed interval.
func NewPollScheduler(spec string, interval time.Duration, logger *logrus.Entry) (*PollScheduler, error) {
	var schedule cron.Schedule
	if spec != "" {
		parsed, err := cron.ParseStandard(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid poll schedule %q: %w", spec, err)
		}
		schedule = parsed
	} else {
		if interval <= 0 {
			return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
		}
		schedule = cron.Every(interval)
	}
	return NewWithSchedule(schedule, logger), nil
}

// NewWithSchedule wraps an existing cron.Schedule.
func NewWithSchedule(schedule cron.Schedule, logger *logrus.Entry) *PollScheduler {
	return &PollScheduler{
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}
}

// Next returns the activation time following now.
func (s *PollScheduler) Next(now time.Time) time.Time {
	return s.schedule.Next(now)
}

// Wait blocks until the next activation. It returns ctx.Err() if the context ends first.
func (s *PollScheduler) Wait(ctx context.Context) error {
	now := s.now()
	next := s.Next(now)
	delay := next.Sub(now)
	if delay < 0 {
		delay = 0
	}
	s.logger.WithField("next_run", next.Format(time.RFC3339)).Debugf("Sleeping for %s", delay)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.after(delay):
		return nil
	}
}
