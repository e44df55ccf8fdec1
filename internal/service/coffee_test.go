package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"coffeebot/internal/models"
	"coffeebot/internal/repository"
)

func TestBrew_ScenarioTwoMinuteDelay(t *testing.T) {
	h := newHarness(t, "2 minutes")
	ctx := context.Background()

	res, err := h.svc.Brew(ctx, models.SourceChat, false)
	if err != nil {
		t.Fatalf("Brew: %v", err)
	}
	if res.Outcome != models.BrewAccepted {
		t.Fatalf("expected accepted, got %s", res.Outcome)
	}
	want := t0.Add(2 * time.Minute)
	if !res.ReadyAt.Equal(want) {
		t.Fatalf("ReadyAt = %v, want %v", res.ReadyAt, want)
	}

	st, err := h.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if st.ReadyAt == nil || !st.ReadyAt.Equal(want) {
		t.Fatalf("Query ReadyAt = %v, want %v", st.ReadyAt, want)
	}
	if st.Description.Mood != models.MoodBrewing || st.Description.Status != models.StatusBrewing {
		t.Fatalf("expected brewing, got %+v", st.Description)
	}
	if !st.AlertArmed {
		t.Fatalf("expected alert armed after brew")
	}

	h.tick(30 * time.Second)
	res, err = h.svc.Brew(ctx, models.SourceHTTP, true)
	if err != nil {
		t.Fatalf("second Brew: %v", err)
	}
	if res.Outcome != models.BrewConflict {
		t.Fatalf("expected conflict at T+30s, got %s", res.Outcome)
	}
	if !res.ReadyAt.Equal(want) {
		t.Fatalf("conflict must report the existing ReadyAt, got %v", res.ReadyAt)
	}
	if h.runner.Scheduled() != 1 {
		t.Fatalf("conflict must not re-arm, scheduled=%d", h.runner.Scheduled())
	}
	if n := h.announcer.Count(models.AnnounceBrewStarted); n != 0 {
		t.Fatalf("conflict must not announce a start, got %d", n)
	}

	if fired := h.tick(90*time.Second + time.Second); fired != 1 {
		t.Fatalf("expected one alert to fire, got %d", fired)
	}
	st, err = h.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if st.Description.Status != models.StatusFresh {
		t.Fatalf("expected fresh at T+2m+1s, got %+v", st.Description)
	}
	if st.Description.Mood != models.MoodJustBrewed {
		t.Fatalf("expected just_brewed mood, got %s", st.Description.Mood)
	}
	if st.AlertArmed {
		t.Fatalf("alert must be cleared once fired")
	}
	if n := h.announcer.Count(models.AnnounceReady); n != 1 {
		t.Fatalf("expected exactly one ready announcement, got %d", n)
	}

	h.tick(time.Hour)
	if n := h.announcer.Count(models.AnnounceReady); n != 1 {
		t.Fatalf("ready announced again later: %d", n)
	}
}

func TestBrew_RepeatedConflictsNeverChangeReadyAt(t *testing.T) {
	h := newHarness(t, "5 minutes")
	ctx := context.Background()

	first, err := h.svc.Brew(ctx, models.SourceChat, false)
	if err != nil {
		t.Fatalf("Brew: %v", err)
	}
	for i := 0; i < 4; i++ {
		h.tick(time.Minute)
		res, err := h.svc.Brew(ctx, models.SourceChat, false)
		if err != nil {
			t.Fatalf("Brew #%d: %v", i, err)
		}
		if res.Outcome != models.BrewConflict || !res.ReadyAt.Equal(first.ReadyAt) {
			t.Fatalf("Brew #%d: got %+v, want conflict at %v", i, res, first.ReadyAt)
		}
	}
	if h.runner.Scheduled() != 1 {
		t.Fatalf("expected a single timer, scheduled=%d", h.runner.Scheduled())
	}
}

func TestBrew_AfterReadyStartsNewPot(t *testing.T) {
	h := newHarness(t, "2m")
	ctx := context.Background()

	if _, err := h.svc.Brew(ctx, models.SourceChat, false); err != nil {
		t.Fatalf("Brew: %v", err)
	}
	h.tick(3 * time.Minute)

	res, err := h.svc.Brew(ctx, models.SourceChat, false)
	if err != nil {
		t.Fatalf("Brew: %v", err)
	}
	if res.Outcome != models.BrewAccepted {
		t.Fatalf("expected accepted once the pot is ready, got %s", res.Outcome)
	}
	if want := t0.Add(5 * time.Minute); !res.ReadyAt.Equal(want) {
		t.Fatalf("ReadyAt = %v, want %v", res.ReadyAt, want)
	}
}

func TestBrew_DefaultDelayWhenStoreEmpty(t *testing.T) {
	h := newHarness(t, "")

	res, err := h.svc.Brew(context.Background(), models.SourceHTTP, false)
	if err != nil {
		t.Fatalf("Brew: %v", err)
	}
	if want := t0.Add(4 * time.Minute); !res.ReadyAt.Equal(want) {
		t.Fatalf("ReadyAt = %v, want default 4 minutes (%v)", res.ReadyAt, want)
	}
}

func TestBrew_AnnounceOnStart(t *testing.T) {
	h := newHarness(t, "2 minutes")

	if _, err := h.svc.Brew(context.Background(), models.SourceHTTP, true); err != nil {
		t.Fatalf("Brew: %v", err)
	}
	kinds := h.announcer.Kinds()
	if len(kinds) != 1 || kinds[0] != models.AnnounceBrewStarted {
		t.Fatalf("expected one BREW_STARTED announcement, got %v", kinds)
	}
}

func TestBrew_AnnouncerFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, "2 minutes")
	h.announcer.err = errors.New("chat down")

	res, err := h.svc.Brew(context.Background(), models.SourceHTTP, true)
	if err != nil {
		t.Fatalf("Brew must succeed while the chat is down: %v", err)
	}
	if res.Outcome != models.BrewAccepted {
		t.Fatalf("expected accepted, got %s", res.Outcome)
	}
	h.tick(2 * time.Minute)
	if n := h.announcer.Count(models.AnnounceReady); n != 1 {
		t.Fatalf("expected one ready attempt, got %d", n)
	}
}

func TestBrew_StoreErrorIsReturned(t *testing.T) {
	h := newHarness(t, "2 minutes")
	h.store.Err = errors.New("disk full")

	if _, err := h.svc.Brew(context.Background(), models.SourceChat, false); err == nil {
		t.Fatalf("expected store error")
	}
	if h.runner.Len() != 0 {
		t.Fatalf("no timer may be armed when the write fails")
	}
}

func TestBrew_InvalidStoredDelay(t *testing.T) {
	h := newHarness(t, "whenever")

	_, err := h.svc.Brew(context.Background(), models.SourceChat, false)
	if !errors.Is(err, ErrInvalidDelay) {
		t.Fatalf("expected ErrInvalidDelay, got %v", err)
	}
}

func TestBrew_ConcurrentRequestsAcceptOnce(t *testing.T) {
	h := newHarness(t, "2 minutes")
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	results := make(chan models.BrewOutcome, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.svc.Brew(ctx, models.SourceHTTP, false)
			if err != nil {
				t.Errorf("Brew: %v", err)
				return
			}
			results <- res.Outcome
		}()
	}
	wg.Wait()
	close(results)

	accepted := 0
	for o := range results {
		if o == models.BrewAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted brew, got %d", accepted)
	}
	if h.runner.Scheduled() != 1 {
		t.Fatalf("expected one timer, scheduled=%d", h.runner.Scheduled())
	}
}

func TestReset_ThenQueryIsUnknown(t *testing.T) {
	h := newHarness(t, "2 minutes")
	ctx := context.Background()

	if _, err := h.svc.Brew(ctx, models.SourceChat, false); err != nil {
		t.Fatalf("Brew: %v", err)
	}
	if err := h.svc.Reset(ctx, models.SourceChat); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	st, err := h.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if st.ReadyAt != nil || st.Description.Status != models.StatusUnknown {
		t.Fatalf("expected unknown after reset, got %+v", st)
	}
	if st.AlertArmed || h.runner.Len() != 0 {
		t.Fatalf("expected no armed timer after reset")
	}

	h.tick(5 * time.Minute)
	if n := h.announcer.Count(models.AnnounceReady); n != 0 {
		t.Fatalf("reset pot must not announce, got %d", n)
	}

	// Resetting twice is harmless.
	if err := h.svc.Reset(ctx, models.SourceHTTP); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
}

func TestMarkFresh_PastNeverArms(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	got, err := h.svc.MarkFresh(ctx, "yesterday", models.SourceChat)
	if err != nil {
		t.Fatalf("MarkFresh: %v", err)
	}
	if want := t0.Add(-24 * time.Hour); !got.Equal(want) {
		t.Fatalf("resolved %v, want %v", got, want)
	}
	st, err := h.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	text := st.Description.Text
	if !strings.HasPrefix(text, "Coffee was last ready ") || !strings.HasSuffix(text, " ago") {
		t.Fatalf("unexpected description %q", text)
	}
	if st.Description.Mood != models.MoodStale {
		t.Fatalf("expected stale, got %s", st.Description.Mood)
	}
	if h.runner.Scheduled() != 0 {
		t.Fatalf("past fresh must not arm a timer")
	}
	h.tick(48 * time.Hour)
	if len(h.announcer.Kinds()) != 0 {
		t.Fatalf("no announcement expected, got %v", h.announcer.Kinds())
	}
}

func TestMarkFresh_FutureArmsExactlyOnce(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	got, err := h.svc.MarkFresh(ctx, "in 5 minutes", models.SourceChat)
	if err != nil {
		t.Fatalf("MarkFresh: %v", err)
	}
	target := t0.Add(5 * time.Minute)
	if !got.Equal(target) {
		t.Fatalf("resolved %v, want %v", got, target)
	}
	pending, ok := h.alerts.Pending()
	if !ok || !pending.Equal(target) {
		t.Fatalf("expected alert at %v, got %v (armed=%v)", target, pending, ok)
	}
	if h.runner.Scheduled() != 1 {
		t.Fatalf("expected one timer, scheduled=%d", h.runner.Scheduled())
	}
	h.tick(5 * time.Minute)
	if n := h.announcer.Count(models.AnnounceReady); n != 1 {
		t.Fatalf("expected one ready announcement, got %d", n)
	}
}

func TestMarkFresh_UnparseableMeansNow(t *testing.T) {
	h := newHarness(t, "")

	for _, when := range []string{"", "   ", "the pot is lovely"} {
		got, err := h.svc.MarkFresh(context.Background(), when, models.SourceChat)
		if err != nil {
			t.Fatalf("MarkFresh(%q): %v", when, err)
		}
		if !got.Equal(t0) {
			t.Fatalf("MarkFresh(%q) = %v, want now", when, got)
		}
	}
}

func TestMarkFresh_StoreFailureKeepsPendingAlert(t *testing.T) {
	h := newHarness(t, "2 minutes")
	ctx := context.Background()

	if _, err := h.svc.Brew(ctx, models.SourceChat, false); err != nil {
		t.Fatalf("Brew: %v", err)
	}
	h.store.Err = errors.New("disk full")
	if _, err := h.svc.MarkFresh(ctx, "", models.SourceChat); err == nil {
		t.Fatalf("expected MarkFresh to fail while the store is down")
	}
	h.store.Err = nil

	pending, ok := h.alerts.Pending()
	if !ok || !pending.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("brew alert must survive a failed fresh, got %v (armed=%v)", pending, ok)
	}
	st, err := h.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if st.Description.Status != models.StatusBrewing || !st.AlertArmed {
		t.Fatalf("expected brewing with alert, got %s armed=%v", st.Description.Status, st.AlertArmed)
	}

	h.tick(3 * time.Minute)
	if n := h.announcer.Count(models.AnnounceReady); n != 1 {
		t.Fatalf("expected one ready announcement, got %d", n)
	}
}

func TestMarkFresh_SupersedesPendingBrew(t *testing.T) {
	h := newHarness(t, "2 minutes")
	ctx := context.Background()

	if _, err := h.svc.Brew(ctx, models.SourceChat, false); err != nil {
		t.Fatalf("Brew: %v", err)
	}
	h.tick(time.Minute)
	if _, err := h.svc.MarkFresh(ctx, "", models.SourceChat); err != nil {
		t.Fatalf("MarkFresh: %v", err)
	}
	if h.runner.Len() != 0 {
		t.Fatalf("manual fresh must disarm the brew timer")
	}
	h.tick(5 * time.Minute)
	if n := h.announcer.Count(models.AnnounceReady); n != 0 {
		t.Fatalf("superseded timer announced %d times", n)
	}
}

func TestAlert_StaleFiringIsSuppressed(t *testing.T) {
	h := newHarness(t, "2 minutes")
	ctx := context.Background()

	if _, err := h.svc.Brew(ctx, models.SourceChat, false); err != nil {
		t.Fatalf("Brew: %v", err)
	}
	// Grab the closure before it is cancelled, as if it had already been dequeued.
	var job runnerJob
	h.runner.mu.Lock()
	for _, j := range h.runner.jobs {
		job = j
	}
	h.runner.mu.Unlock()

	if err := h.svc.Reset(ctx, models.SourceChat); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	h.clock.Advance(3 * time.Minute)
	job.fn()

	if n := h.announcer.Count(models.AnnounceReady); n != 0 {
		t.Fatalf("disarmed timer announced %d times", n)
	}
}

func TestRestore_RearmsFutureReadyAt(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	target := t0.Add(90 * time.Second)
	if err := repository.SaveTime(ctx, h.store, repository.KeyLastCoffee, target); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := h.svc.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	pending, ok := h.alerts.Pending()
	if !ok || !pending.Equal(target) {
		t.Fatalf("expected alert at %v after restore, got %v (armed=%v)", target, pending, ok)
	}
	h.tick(90 * time.Second)
	if n := h.announcer.Count(models.AnnounceReady); n != 1 {
		t.Fatalf("expected one ready announcement after restore, got %d", n)
	}
}

func TestRestore_PastOrMissingReadyAt(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	if err := h.svc.Restore(ctx); err != nil {
		t.Fatalf("Restore with empty store: %v", err)
	}
	if err := repository.SaveTime(ctx, h.store, repository.KeyLastCoffee, t0.Add(-time.Minute)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := h.svc.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if h.runner.Scheduled() != 0 {
		t.Fatalf("past ReadyAt must not arm, scheduled=%d", h.runner.Scheduled())
	}
}

func TestEvents_RecordTransitions(t *testing.T) {
	h := newHarness(t, "2 minutes")
	ctx := context.Background()

	_, _ = h.svc.Brew(ctx, models.SourceHTTP, false)
	_, _ = h.svc.Brew(ctx, models.SourceChat, false)
	h.tick(2 * time.Minute)
	_, _ = h.svc.MarkFresh(ctx, "10 minutes ago", models.SourceChat)
	_ = h.svc.Reset(ctx, models.SourceAdmin)

	got := strings.Join(h.events.Types(), ",")
	want := "BREW,BREW_REJECTED,READY,FRESH,RESET"
	if got != want {
		t.Fatalf("events = %s, want %s", got, want)
	}
}

func TestEvents_AppendFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, "2 minutes")
	h.events.appendErr = errors.New("locked")

	if _, err := h.svc.Brew(context.Background(), models.SourceChat, false); err != nil {
		t.Fatalf("Brew must ignore event log failures: %v", err)
	}
}

func TestBrewDelay_SetAndGet(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	text, d, err := h.svc.BrewDelay(ctx)
	if err != nil {
		t.Fatalf("BrewDelay: %v", err)
	}
	if text != DefaultBrewDelay || d != 4*time.Minute {
		t.Fatalf("default delay = %q/%v", text, d)
	}

	if _, err := h.svc.SetBrewDelay(ctx, "nope"); !errors.Is(err, ErrInvalidDelay) {
		t.Fatalf("expected ErrInvalidDelay, got %v", err)
	}
	if _, err := h.svc.SetBrewDelay(ctx, "-3m"); !errors.Is(err, ErrInvalidDelay) {
		t.Fatalf("expected ErrInvalidDelay for negative delay, got %v", err)
	}

	d, err = h.svc.SetBrewDelay(ctx, " 2 minutes ")
	if err != nil {
		t.Fatalf("SetBrewDelay: %v", err)
	}
	if d != 2*time.Minute {
		t.Fatalf("SetBrewDelay returned %v", d)
	}
	raw, _, _ := h.store.Get(ctx, repository.KeyBrewDelay)
	if raw != "2 minutes" {
		t.Fatalf("stored brew_delay = %q", raw)
	}

	res, err := h.svc.Brew(ctx, models.SourceAdmin, false)
	if err != nil {
		t.Fatalf("Brew: %v", err)
	}
	if want := t0.Add(2 * time.Minute); !res.ReadyAt.Equal(want) {
		t.Fatalf("Brew used stale delay: %v", res.ReadyAt)
	}
}
