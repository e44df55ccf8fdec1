package models

import "time"

// Status is derived from ReadyAt; it is never stored.
type Status string

const (
	StatusUnknown Status = "unknown" // ReadyAt absent
	StatusBrewing Status = "brewing" // ReadyAt in the future
	StatusFresh   Status = "fresh"   // ReadyAt in the past
)

// Mood is a coarse freshness tier. Tiers are ordered by elapsed time.
type Mood string

const (
	MoodUnknown     Mood = "unknown"
	MoodBrewing     Mood = "brewing"
	MoodAlmostReady Mood = "almost_ready"
	MoodImminent    Mood = "imminent"
	MoodJustBrewed  Mood = "just_brewed"
	MoodFresh       Mood = "fresh"
	MoodStale       Mood = "stale"
)

// Description is the human-facing rendering of a ReadyAt value at a given instant.
type Description struct {
	Status Status `json:"status"`
	Mood   Mood   `json:"mood"`
	// Label is the short UI phrase, e.g. "almost there...".
	Label string `json:"label"`
	// Distance is the humanised gap between now and ReadyAt, e.g. "3 minutes".
	Distance string `json:"distance,omitempty"`
	// Text is the full chat sentence.
	Text string `json:"text"`
}

// BrewState is the snapshot returned by Query.
type BrewState struct {
	ReadyAt     *time.Time  `json:"ready_at"`
	Description Description `json:"description"`
	AlertArmed  bool        `json:"alert_armed"`
	ObservedAt  time.Time   `json:"observed_at"`
}

// Source identifies which transport triggered a transition.
type Source string

const (
	SourceChat   Source = "chat"
	SourceHTTP   Source = "http"
	SourceAdmin  Source = "admin"
	SourceTimer  Source = "timer"
	SourceSystem Source = "system"
)

// BrewOutcome is the result value of a brew request.
type BrewOutcome string

const (
	BrewAccepted BrewOutcome = "accepted"
	BrewConflict BrewOutcome = "conflict"
)

// BrewResult reports what Brew did. On conflict ReadyAt is the existing target.
type BrewResult struct {
	Outcome BrewOutcome `json:"outcome"`
	ReadyAt time.Time   `json:"ready_at"`
}

// AnnouncementKind distinguishes the side effects observers can receive.
type AnnouncementKind string

const (
	AnnounceReady       AnnouncementKind = "READY"
	AnnounceBrewStarted AnnouncementKind = "BREW_STARTED"
)

// Announcement is delivered to every configured announce sink.
type Announcement struct {
	Kind    AnnouncementKind `json:"kind"`
	ReadyAt time.Time        `json:"ready_at"`
	At      time.Time        `json:"at"`
}
