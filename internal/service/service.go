package service

import (
	"context"
	"time"

	"coffeebot/internal/models"
	"coffeebot/internal/repository"
)

// Coffee is the brew state machine. Every transition runs in one critical section.
type Coffee interface {
	Brew(ctx context.Context, src models.Source, announceStart bool) (models.BrewResult, error)
	MarkFresh(ctx context.Context, when string, src models.Source) (time.Time, error)
	Reset(ctx context.Context, src models.Source) error
	Query(ctx context.Context) (models.BrewState, error)
	Restore(ctx context.Context) error
}

// Settings exposes the runtime-tunable brew delay.
type Settings interface {
	BrewDelay(ctx context.Context) (string, time.Duration, error)
	SetBrewDelay(ctx context.Context, text string) (time.Duration, error)
}

// Monitoring exposes read-only state for the websocket stream.
type Monitoring interface {
	GetState(ctx context.Context) (models.BrewState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CoffeeEvent, error)
}

// Authorization issues and checks admin API tokens.
type Authorization interface {
	Enabled() bool
	IssueToken(subject string) (string, error)
	SignIn(subject, secret string) (string, error)
	ParseToken(accessToken string) (string, error)
}

type Service struct {
	Coffee
	Settings
	Monitoring
	EventLog
	Authorization
}

// NewService wires the repository layer and the coffee state machine into the
// aggregate used by the HTTP and chat layers.
func NewService(repos *repository.Repository, coffee *CoffeeService, auth *AuthService) *Service {
	return &Service{
		Coffee:        coffee,
		Settings:      coffee,
		Monitoring:    coffee.MonitoringService,
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: auth,
	}
}
