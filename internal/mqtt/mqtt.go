// Package mqtt publishes coffee announcements to an MQTT broker for
// home-automation displays.
package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"coffeebot/internal/models"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "coffee/status"

// Publisher publishes announcements to MQTT.
type Publisher interface {
	// Publish sends one announcement. Errors must not crash the process.
	Publish(a models.Announcement) error
	Close() error
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Coffee CoffeePayload `json:"coffee"`
}

// CoffeePayload contains the announcement details.
type CoffeePayload struct {
	Timestamp  string `json:"timestamp"`
	Event      string `json:"event"`
	LastCoffee string `json:"last_coffee"`
}

// FormatPayload creates the JSON payload for an announcement.
func FormatPayload(a models.Announcement) ([]byte, error) {
	return json.Marshal(Payload{
		Coffee: CoffeePayload{
			Timestamp:  a.At.UTC().Format(time.RFC3339),
			Event:      string(a.Kind),
			LastCoffee: a.ReadyAt.UTC().Format(time.RFC3339),
		},
	})
}

// Announcer adapts a Publisher to the announcement fan-out.
type Announcer struct {
	pub Publisher
}

func NewAnnouncer(pub Publisher) *Announcer {
	return &Announcer{pub: pub}
}

func (a *Announcer) Announce(_ context.Context, an models.Announcement) error {
	return a.pub.Publish(an)
}
