package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"coffeebot/internal/models"
	"coffeebot/internal/repository"
	"coffeebot/internal/scheduler"

	"github.com/google/uuid"
)

// fakeClock is a settable clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type runnerJob struct {
	at time.Time
	fn func()
}

// manualRunner records scheduled jobs; tests fire them with RunDue.
type manualRunner struct {
	mu        sync.Mutex
	jobs      map[scheduler.Handle]runnerJob
	scheduled int
}

func newManualRunner() *manualRunner {
	return &manualRunner{jobs: map[scheduler.Handle]runnerJob{}}
}

func (r *manualRunner) Schedule(at time.Time, fn func()) (scheduler.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := uuid.New()
	r.jobs[h] = runnerJob{at: at, fn: fn}
	r.scheduled++
	return h, nil
}

func (r *manualRunner) Cancel(h scheduler.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, h)
	return nil
}

func (r *manualRunner) Start()      {}
func (r *manualRunner) Stop() error { return nil }

func (r *manualRunner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *manualRunner) Scheduled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scheduled
}

// RunDue runs every job whose time is not after now, in time order.
func (r *manualRunner) RunDue(now time.Time) int {
	r.mu.Lock()
	var due []runnerJob
	for h, j := range r.jobs {
		if !j.at.After(now) {
			due = append(due, j)
			delete(r.jobs, h)
		}
	}
	r.mu.Unlock()
	sort.Slice(due, func(i, k int) bool { return due[i].at.Before(due[k].at) })
	for _, j := range due {
		j.fn()
	}
	return len(due)
}

// recordingAnnouncer captures announcements.
type recordingAnnouncer struct {
	mu  sync.Mutex
	got []models.Announcement
	err error
}

func (a *recordingAnnouncer) Announce(_ context.Context, an models.Announcement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.got = append(a.got, an)
	return a.err
}

func (a *recordingAnnouncer) Kinds() []models.AnnouncementKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.AnnouncementKind, 0, len(a.got))
	for _, an := range a.got {
		out = append(out, an.Kind)
	}
	return out
}

func (a *recordingAnnouncer) Count(kind models.AnnouncementKind) int {
	n := 0
	for _, k := range a.Kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// memEventRepo keeps appended events in memory.
type memEventRepo struct {
	mu        sync.Mutex
	events    []models.CoffeeEvent
	appendErr error
}

func (r *memEventRepo) Append(_ context.Context, e models.CoffeeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *memEventRepo) List(_ context.Context, from, to time.Time, typ string) ([]models.CoffeeEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CoffeeEvent
	for _, e := range r.events {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memEventRepo) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// stubParser resolves a fixed set of phrases relative to base.
type stubParser map[string]time.Duration

var errStubNoMatch = errors.New("no match")

func (p stubParser) Parse(text string, base time.Time) (time.Time, error) {
	d, ok := p[text]
	if !ok {
		return time.Time{}, errStubNoMatch
	}
	return base.Add(d), nil
}

var defaultPhrases = stubParser{
	"in 2 minutes":   2 * time.Minute,
	"in 4 minutes":   4 * time.Minute,
	"in 5 minutes":   5 * time.Minute,
	"yesterday":      -24 * time.Hour,
	"10 minutes ago": -10 * time.Minute,
}

var t0 = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc       *CoffeeService
	store     *repository.MemoryKV
	events    *memEventRepo
	runner    *manualRunner
	alerts    *scheduler.AlertScheduler
	announcer *recordingAnnouncer
	clock     *fakeClock
}

func newHarness(t *testing.T, delay string) *harness {
	t.Helper()
	h := &harness{
		store:     repository.NewMemoryKV(),
		events:    &memEventRepo{},
		runner:    newManualRunner(),
		announcer: &recordingAnnouncer{},
		clock:     &fakeClock{t: t0},
	}
	if delay != "" {
		if err := h.store.Set(context.Background(), repository.KeyBrewDelay, delay); err != nil {
			t.Fatalf("seed brew_delay: %v", err)
		}
	}
	h.alerts = scheduler.NewAlertScheduler(h.runner, nil, h.clock.Now)
	h.svc = NewCoffeeService(CoffeeDeps{
		Store:     h.store,
		Events:    h.events,
		Alerts:    h.alerts,
		Parser:    defaultPhrases,
		Announcer: h.announcer,
		Now:       h.clock.Now,
	})
	return h
}

// tick advances the clock and fires any alerts that became due.
func (h *harness) tick(d time.Duration) int {
	h.clock.Advance(d)
	return h.runner.RunDue(h.clock.Now())
}
