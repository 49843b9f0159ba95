package scheduler

import (
	"context"
	"sync"
	"time"

	"veillellm/internal/ports"
)

// Daily triggers a job once a day at a fixed local time. The job runs
// on its own goroutine; overlap protection belongs to the pipeline's
// single-flight guard, not to the scheduler.
type Daily struct {
	hour     int
	minute   int
	location *time.Location
	now      func() time.Time

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Scheduler = (*Daily)(nil)

// NewDaily builds a scheduler for the given local time of day.
func NewDaily(hour, minute int, location *time.Location) *Daily {
	if location == nil {
		location = time.UTC
	}
	return &Daily{hour: hour, minute: minute, location: location, now: time.Now}
}

// NextRun returns the next trigger instant.
func (d *Daily) NextRun() time.Time {
	now := d.now().In(d.location)
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start launches the trigger loop.
func (d *Daily) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}
	d.stop = make(chan struct{})
	stop := d.stop

	go func() {
		for {
			wait := time.Until(d.NextRun())
			timer := time.NewTimer(wait)
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the trigger loop.
func (d *Daily) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}
