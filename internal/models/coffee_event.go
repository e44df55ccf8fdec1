package models

import "time"

// Event types recorded in the coffee event log.
const (
	EventBrew         = "BREW"
	EventBrewRejected = "BREW_REJECTED"
	EventFresh        = "FRESH"
	EventReset        = "RESET"
	EventReady        = "READY"
)

// CoffeeEvent is a single log entry.
type CoffeeEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // BREW | BREW_REJECTED | FRESH | RESET | READY
	Description string    `json:"description"` // human-readable
	Source      Source    `json:"source"`
	Metadata    any       `json:"metadata,omitempty"`
}
