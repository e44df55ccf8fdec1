// Package scheduler owns the single pending "coffee is ready" alert.
package scheduler

import (
	"sync"
	"time"

	"coffeebot/internal/logger"
)

// ArmOutcome says whether Arm left a timer pending.
type ArmOutcome int

const (
	OutcomeAlreadyPast ArmOutcome = iota
	OutcomeArmed
)

func (o ArmOutcome) String() string {
	if o == OutcomeArmed {
		return "armed"
	}
	return "already_past"
}

// AlertScheduler keeps at most one pending alert. Each Arm bumps a generation;
// a firing timer whose generation is no longer current is suppressed.
type AlertScheduler struct {
	runner Runner
	log    *logger.Logger
	now    func() time.Time

	mu         sync.Mutex
	handle     Handle
	target     time.Time
	pending    bool
	generation uint64
}

func NewAlertScheduler(runner Runner, log *logger.Logger, now func() time.Time) *AlertScheduler {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AlertScheduler{runner: runner, log: log, now: now}
}

// Arm disarms any pending alert and, if target is in the future, schedules
// onFire for it. onFire receives the generation it was armed with.
func (s *AlertScheduler) Arm(target *time.Time, onFire func(generation uint64)) (ArmOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked()

	now := s.now()
	if target == nil || !target.After(now) {
		if target != nil {
			s.log.Infow("alert_already_past", "target", target.UTC(), "now", now.UTC())
		} else {
			s.log.Debugw("alert_no_target")
		}
		return OutcomeAlreadyPast, nil
	}

	s.generation++
	gen := s.generation
	h, err := s.runner.Schedule(*target, func() { s.fire(gen, onFire) })
	if err != nil {
		s.log.Errorw("alert_schedule_failed", "err", err, "target", target.UTC())
		return OutcomeAlreadyPast, err
	}
	s.handle = h
	s.target = *target
	s.pending = true
	s.log.Infow("alert_armed", "target", target.UTC(), "in", target.Sub(now).Round(time.Second).String())
	return OutcomeArmed, nil
}

// Disarm cancels the pending alert, if any. Safe to call repeatedly.
func (s *AlertScheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

// RearmFromPersisted re-derives the alert from the stored ReadyAt at process start.
func (s *AlertScheduler) RearmFromPersisted(readyAt *time.Time, onFire func(generation uint64)) (ArmOutcome, error) {
	return s.Arm(readyAt, onFire)
}

// Pending returns the target of the pending alert.
func (s *AlertScheduler) Pending() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.pending
}

// IsCurrent reports whether generation belongs to the alert that is still pending.
func (s *AlertScheduler) IsCurrent(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending && s.generation == generation
}

// Complete clears the pending alert if generation is still current. It reports
// whether the caller owns the firing.
func (s *AlertScheduler) Complete(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending || s.generation != generation {
		return false
	}
	s.pending = false
	s.target = time.Time{}
	return true
}

func (s *AlertScheduler) disarmLocked() {
	if !s.pending {
		return
	}
	if err := s.runner.Cancel(s.handle); err != nil {
		s.log.Warnw("alert_cancel_failed", "err", err)
	}
	s.pending = false
	s.target = time.Time{}
	// A timer already past Cancel will see a stale generation.
	s.generation++
}

func (s *AlertScheduler) fire(generation uint64, onFire func(uint64)) {
	if !s.IsCurrent(generation) {
		s.log.Debugw("alert_superseded", "generation", generation)
		return
	}
	s.log.Infow("alert_ding")
	onFire(generation)
}
