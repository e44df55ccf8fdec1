package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Handle identifies one scheduled task.
type Handle = uuid.UUID

// Runner is a cancellable one-shot task scheduler.
type Runner interface {
	Schedule(at time.Time, fn func()) (Handle, error)
	Cancel(h Handle) error
	Start()
	Stop() error
}

// GocronRunner runs one-time gocron jobs.
type GocronRunner struct {
	scheduler gocron.Scheduler
}

// NewGocronRunner creates a runner; call Start before jobs can fire.
func NewGocronRunner() (*GocronRunner, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &GocronRunner{scheduler: s}, nil
}

func (r *GocronRunner) Start() { r.scheduler.Start() }

func (r *GocronRunner) Stop() error { return r.scheduler.Shutdown() }

// Schedule runs fn once at the wall-clock instant at.
func (r *GocronRunner) Schedule(at time.Time, fn func()) (Handle, error) {
	job, err := r.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(fn),
		gocron.WithName("coffee-ready-alert"),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create alert job: %w", err)
	}
	return job.ID(), nil
}

// Cancel removes the job. Jobs that already ran or never existed are not an error.
func (r *GocronRunner) Cancel(h Handle) error {
	if err := r.scheduler.RemoveJob(h); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		return fmt.Errorf("failed to remove alert job %s: %w", h, err)
	}
	return nil
}
