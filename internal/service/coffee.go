package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"coffeebot/internal/brewclock"
	"coffeebot/internal/logger"
	"coffeebot/internal/metrics"
	"coffeebot/internal/models"
	"coffeebot/internal/repository"
	"coffeebot/internal/scheduler"
	"coffeebot/internal/timeparse"

	"github.com/google/uuid"
)

const (
	// DefaultBrewDelay is used when neither the store nor the config names a delay.
	DefaultBrewDelay = "4 minutes"

	announceTimeout = 15 * time.Second
)

var ErrInvalidDelay = errors.New("invalid brew delay")

// CoffeeDeps collects the collaborators of CoffeeService.
type CoffeeDeps struct {
	Store     repository.KVStore
	Events    repository.EventRepo
	Alerts    *scheduler.AlertScheduler
	Parser    timeparse.Parser
	Announcer Announcer
	Metrics   metrics.Recorder
	Log       *logger.Logger
	Now       func() time.Time
	// DefaultDelay is the brew delay used while the store has none.
	DefaultDelay string
}

// CoffeeService is the brew state machine. ReadyAt lives in the store under
// last_coffee; the status is always derived from it.
type CoffeeService struct {
	*MonitoringService

	store        repository.KVStore
	events       repository.EventRepo
	alerts       *scheduler.AlertScheduler
	parser       timeparse.Parser
	announcer    Announcer
	metrics      metrics.Recorder
	log          *logger.Logger
	now          func() time.Time
	defaultDelay string

	mu sync.Mutex
}

func NewCoffeeService(d CoffeeDeps) *CoffeeService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NoopRecorder{}
	}
	if d.Parser == nil {
		d.Parser = timeparse.New()
	}
	if d.Announcer == nil {
		d.Announcer = NewFanout(d.Log, d.Metrics)
	}
	if strings.TrimSpace(d.DefaultDelay) == "" {
		d.DefaultDelay = DefaultBrewDelay
	}
	return &CoffeeService{
		MonitoringService: NewMonitoringService(d.Store, d.Alerts, d.Now),
		store:             d.Store,
		events:            d.Events,
		alerts:            d.Alerts,
		parser:            d.Parser,
		announcer:         d.Announcer,
		metrics:           d.Metrics,
		log:               d.Log,
		now:               d.Now,
		defaultDelay:      d.DefaultDelay,
	}
}

// Brew starts a pot unless one is already brewing. A pot in progress is
// reported as a conflict and its timer is left alone.
func (s *CoffeeService) Brew(ctx context.Context, src models.Source, announceStart bool) (models.BrewResult, error) {
	s.mu.Lock()
	now := s.now().UTC()

	current, err := repository.LoadTime(ctx, s.store, repository.KeyLastCoffee)
	if err != nil {
		s.mu.Unlock()
		return models.BrewResult{}, fmt.Errorf("load ready_at: %w", err)
	}
	if brewclock.IsFuture(current, now) {
		s.mu.Unlock()
		s.metrics.IncBrewOutcome(string(src), string(models.BrewConflict))
		s.log.Infow("brew_conflict", "source", src, "ready_at", *current)
		s.appendEvent(ctx, models.CoffeeEvent{
			OccurredAt:  now,
			Type:        models.EventBrewRejected,
			Description: "Brew rejected: already brewing",
			Source:      src,
			Metadata:    map[string]any{"ready_at": current.Format(repository.TimeLayout)},
		})
		return models.BrewResult{Outcome: models.BrewConflict, ReadyAt: *current}, nil
	}

	_, delay, err := s.brewDelayAt(ctx, now)
	if err != nil {
		s.mu.Unlock()
		return models.BrewResult{}, err
	}
	readyAt := now.Add(delay)
	if err := repository.SaveTime(ctx, s.store, repository.KeyLastCoffee, readyAt); err != nil {
		s.mu.Unlock()
		return models.BrewResult{}, fmt.Errorf("save ready_at: %w", err)
	}
	s.armLocked(readyAt)
	s.mu.Unlock()

	s.metrics.IncBrewOutcome(string(src), string(models.BrewAccepted))
	s.metrics.SetReadyAt(&readyAt)
	s.log.Infow("brew_accepted", "source", src, "ready_at", readyAt, "delay", delay.String())
	s.appendEvent(ctx, models.CoffeeEvent{
		OccurredAt:  now,
		Type:        models.EventBrew,
		Description: "Brew started",
		Source:      src,
		Metadata: map[string]any{
			"ready_at":  readyAt.Format(repository.TimeLayout),
			"delay_sec": int(delay.Seconds()),
		},
	})

	if announceStart {
		s.announce(ctx, models.Announcement{Kind: models.AnnounceBrewStarted, ReadyAt: readyAt, At: now})
	}
	return models.BrewResult{Outcome: models.BrewAccepted, ReadyAt: readyAt}, nil
}

// MarkFresh records a manually reported brew time. Text that does not parse
// means "now". Once the new time is stored, a pending alert is superseded and a
// future time arms a new one. A failed write leaves the old alert in place.
func (s *CoffeeService) MarkFresh(ctx context.Context, when string, src models.Source) (time.Time, error) {
	s.mu.Lock()
	now := s.now().UTC()
	readyAt := s.resolveWhen(when, now)

	if err := repository.SaveTime(ctx, s.store, repository.KeyLastCoffee, readyAt); err != nil {
		s.mu.Unlock()
		return time.Time{}, fmt.Errorf("save ready_at: %w", err)
	}
	armed := false
	if readyAt.After(now) {
		armed = s.armLocked(readyAt)
	} else {
		s.alerts.Disarm()
	}
	s.mu.Unlock()

	s.metrics.SetReadyAt(&readyAt)
	s.log.Infow("marked_fresh", "source", src, "ready_at", readyAt, "alert_armed", armed)
	s.appendEvent(ctx, models.CoffeeEvent{
		OccurredAt:  now,
		Type:        models.EventFresh,
		Description: "Coffee reported fresh",
		Source:      src,
		Metadata: map[string]any{
			"ready_at": readyAt.Format(repository.TimeLayout),
			"when":     strings.TrimSpace(when),
		},
	})
	return readyAt, nil
}

// Reset forgets ReadyAt and cancels any pending alert.
func (s *CoffeeService) Reset(ctx context.Context, src models.Source) error {
	s.mu.Lock()
	s.alerts.Disarm()
	if err := s.store.Delete(ctx, repository.KeyLastCoffee); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("delete ready_at: %w", err)
	}
	now := s.now().UTC()
	s.mu.Unlock()

	s.metrics.SetReadyAt(nil)
	s.log.Infow("reset", "source", src)
	s.appendEvent(ctx, models.CoffeeEvent{
		OccurredAt:  now,
		Type:        models.EventReset,
		Description: "Brew state reset",
		Source:      src,
	})
	return nil
}

// Query is read-only; it never changes the store or the timer.
func (s *CoffeeService) Query(ctx context.Context) (models.BrewState, error) {
	return s.GetState(ctx)
}

// Restore re-arms the alert for a persisted ReadyAt still in the future.
// It is called once at process start.
func (s *CoffeeService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	readyAt, err := repository.LoadTime(ctx, s.store, repository.KeyLastCoffee)
	if err != nil {
		return fmt.Errorf("load ready_at: %w", err)
	}
	s.metrics.SetReadyAt(readyAt)
	out, err := s.alerts.RearmFromPersisted(readyAt, s.onAlert)
	if err != nil {
		return fmt.Errorf("rearm alert: %w", err)
	}
	s.log.Infow("restored", "ready_at", readyAt, "alert", out.String())
	return nil
}

// BrewDelay returns the configured delay text and its resolved duration.
func (s *CoffeeService) BrewDelay(ctx context.Context) (string, time.Duration, error) {
	return s.brewDelayAt(ctx, s.now().UTC())
}

// SetBrewDelay validates text and stores it for subsequent brews.
func (s *CoffeeService) SetBrewDelay(ctx context.Context, text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	d, err := timeparse.ParseDelay(text, s.parser, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDelay, err)
	}
	if err := s.store.Set(ctx, repository.KeyBrewDelay, text); err != nil {
		return 0, fmt.Errorf("save brew_delay: %w", err)
	}
	s.log.Infow("brew_delay_changed", "brew_delay", text, "duration", d.String())
	return d, nil
}

func (s *CoffeeService) brewDelayAt(ctx context.Context, now time.Time) (string, time.Duration, error) {
	text, ok, err := s.store.Get(ctx, repository.KeyBrewDelay)
	if err != nil {
		return "", 0, fmt.Errorf("load brew_delay: %w", err)
	}
	if !ok || strings.TrimSpace(text) == "" {
		text = s.defaultDelay
	}
	d, err := timeparse.ParseDelay(text, s.parser, now)
	if err != nil {
		return text, 0, fmt.Errorf("%w: %v", ErrInvalidDelay, err)
	}
	return text, d, nil
}

// resolveWhen falls back to now when text is empty or unparseable.
func (s *CoffeeService) resolveWhen(when string, now time.Time) time.Time {
	when = strings.TrimSpace(when)
	if when == "" {
		return now
	}
	t, err := s.parser.Parse(when, now)
	if err != nil {
		s.log.Infow("fresh_time_unparsed", "when", when, "err", err)
		return now
	}
	return t.UTC()
}

// armLocked must be called with s.mu held.
func (s *CoffeeService) armLocked(readyAt time.Time) bool {
	out, err := s.alerts.Arm(&readyAt, s.onAlert)
	if err != nil {
		s.log.Errorw("alert_arm_failed", "ready_at", readyAt, "err", err)
		return false
	}
	return out == scheduler.OutcomeArmed
}

// onAlert runs on the scheduler's goroutine. It goes through the same mutex as
// the commands, and only the alert that is still current may announce.
func (s *CoffeeService) onAlert(generation uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
	defer cancel()

	s.mu.Lock()
	if !s.alerts.Complete(generation) {
		s.mu.Unlock()
		s.log.Debugw("alert_superseded", "generation", generation)
		return
	}
	readyAt, err := repository.LoadTime(ctx, s.store, repository.KeyLastCoffee)
	if err != nil {
		s.mu.Unlock()
		s.log.Errorw("alert_load_failed", "err", err)
		return
	}
	now := s.now().UTC()
	if readyAt == nil {
		s.mu.Unlock()
		return
	}
	if readyAt.After(now) {
		// Fired ahead of the stored target; wait for it.
		s.armLocked(*readyAt)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.metrics.IncAlertFired()
	s.log.Infow("coffee_ready", "ready_at", *readyAt)
	s.appendEvent(ctx, models.CoffeeEvent{
		OccurredAt:  now,
		Type:        models.EventReady,
		Description: "Coffee is ready",
		Source:      models.SourceTimer,
		Metadata:    map[string]any{"ready_at": readyAt.Format(repository.TimeLayout)},
	})
	s.announce(ctx, models.Announcement{Kind: models.AnnounceReady, ReadyAt: *readyAt, At: now})
}

func (s *CoffeeService) announce(ctx context.Context, a models.Announcement) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
	defer cancel()
	if err := s.announcer.Announce(ctx, a); err != nil {
		s.log.Warnw("announce_failed", "kind", a.Kind, "err", err)
	}
}

// appendEvent records history; a failing event log never fails a transition.
func (s *CoffeeService) appendEvent(ctx context.Context, e models.CoffeeEvent) {
	if s.events == nil {
		return
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if err := s.events.Append(context.WithoutCancel(ctx), e); err != nil {
		s.log.Errorw("event_append_failed", "type", e.Type, "err", err)
	}
}
