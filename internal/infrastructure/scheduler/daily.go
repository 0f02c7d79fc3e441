package scheduler

import (
	"context"
	"fmt"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/ports"
)

// DailyScheduler fires a job once per day at a fixed wall-clock time in the
// configured timezone.
type DailyScheduler struct {
	runAt    string
	location *time.Location
	now      func() time.Time
	stop     chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler builds a scheduler from the "HH:MM" trigger time.
func NewDailyScheduler(cfg config.SchedulerConfig) *DailyScheduler {
	return &DailyScheduler{
		runAt:    cfg.RunAt,
		location: cfg.Location(),
		now:      time.Now,
	}
}

// Start launches the trigger goroutine. The first firing waits for the next
// occurrence of the configured time; subsequent firings come every 24 hours.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if d.stop != nil {
		return nil
	}

	hour, minute, err := parseRunAt(d.runAt)
	if err != nil {
		return err
	}

	d.stop = make(chan struct{})
	go func() {
		delay := untilNext(d.now().In(d.location), hour, minute)
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case t := <-timer.C:
			job(t.In(d.location))
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				job(t.In(d.location))
			case <-ctx.Done():
				return
			case <-d.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the trigger goroutine.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}

func parseRunAt(runAt string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(runAt, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse trigger time %q: %w", runAt, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("trigger time %q out of range", runAt)
	}
	return hour, minute, nil
}

func untilNext(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
