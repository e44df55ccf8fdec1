package models

import "time"

// ChatEvent is an inbound chat message after boundary validation.
type ChatEvent struct {
	RoomID          string
	SenderID        string
	Body            string
	OriginTimestamp time.Time
	EventID         string
}
