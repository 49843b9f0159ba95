package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"veillellm/internal/ports"
)

// Scheduler wires the daily trigger driver with the pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring run.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler. A trigger
// that lands while a run is active is logged and skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.pipeline.Run(ctx); err != nil {
			if errors.Is(err, ErrPipelineBusy) {
				if s.logger != nil {
					s.logger.Warn("scheduled run skipped, pipeline busy", "trigger", trigger)
				}
				return
			}
			if s.logger != nil {
				s.logger.Error("scheduled run error", "error", err)
			}
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}

// NextRun exposes the next scheduled trigger for status queries.
func (s *Scheduler) NextRun() time.Time {
	if s.driver == nil {
		return time.Time{}
	}
	return s.driver.NextRun()
}
