package service

import (
	"context"
	"fmt"
	"time"

	"coffeebot/internal/brewclock"
	"coffeebot/internal/models"
	"coffeebot/internal/repository"
	"coffeebot/internal/scheduler"
)

type MonitoringService struct {
	store  repository.KVStore
	alerts *scheduler.AlertScheduler
	now    func() time.Time
}

func NewMonitoringService(store repository.KVStore, alerts *scheduler.AlertScheduler, now func() time.Time) *MonitoringService {
	if now == nil {
		now = time.Now
	}
	return &MonitoringService{store: store, alerts: alerts, now: now}
}

// GetState returns the persisted ReadyAt and its description at the current instant.
// It never touches the store for writing nor the alert timer.
func (s *MonitoringService) GetState(ctx context.Context) (models.BrewState, error) {
	readyAt, err := repository.LoadTime(ctx, s.store, repository.KeyLastCoffee)
	if err != nil {
		return models.BrewState{}, fmt.Errorf("load ready_at: %w", err)
	}
	now := toUTC(s.now())
	st := models.BrewState{
		ReadyAt:     readyAt,
		Description: brewclock.Describe(readyAt, now),
		ObservedAt:  now,
	}
	if s.alerts != nil {
		_, st.AlertArmed = s.alerts.Pending()
	}
	return st, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
