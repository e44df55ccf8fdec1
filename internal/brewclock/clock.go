// Package brewclock turns a ReadyAt timestamp into the phrases and mood tiers
// shown by the chat bot and the web UI. Everything here is pure: identical
// inputs give identical output.
package brewclock

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"coffeebot/internal/models"
)

// Tier boundaries. Remaining time is measured before ReadyAt, elapsed time after it.
const (
	AlmostReadyWithin = time.Minute
	ImminentWithin    = 10 * time.Second
	JustBrewedFor     = time.Minute
	FreshFor          = time.Hour
)

const (
	TextUnknown  = "Sorry, I have no idea when the coffee was last brewed ☹️"
	textBrewing  = "Coffee will be ready in about "
	textReadyAgo = "Coffee was last ready "

	textAnyMoment = "Coffee will be ready any moment now"
	textJustNow   = "Coffee was ready just now"

	// distanceNow is what humanize renders for gaps under a second.
	distanceNow = "now"
)

var labels = map[models.Mood]string{
	models.MoodUnknown:     "no idea",
	models.MoodBrewing:     "brewing",
	models.MoodAlmostReady: "almost there...",
	models.MoodImminent:    "just a little bit more...",
	models.MoodJustBrewed:  "now! ☕",
	models.MoodFresh:       "fresh",
	models.MoodStale:       "stale",
}

// rank orders tiers by staleness; unknown is outside the order.
var rank = map[models.Mood]int{
	models.MoodBrewing:     0,
	models.MoodAlmostReady: 1,
	models.MoodImminent:    2,
	models.MoodJustBrewed:  3,
	models.MoodFresh:       4,
	models.MoodStale:       5,
}

// Rank reports the staleness order of m; ok is false for MoodUnknown.
func Rank(m models.Mood) (int, bool) {
	r, ok := rank[m]
	return r, ok
}

// Label returns the short UI phrase for a mood.
func Label(m models.Mood) string {
	return labels[m]
}

// IsFuture reports whether readyAt is strictly after now. A nil readyAt is never in the future.
func IsFuture(readyAt *time.Time, now time.Time) bool {
	return readyAt != nil && readyAt.After(now)
}

// StatusOf derives the brew status from ReadyAt alone.
func StatusOf(readyAt *time.Time, now time.Time) models.Status {
	switch {
	case readyAt == nil:
		return models.StatusUnknown
	case IsFuture(readyAt, now):
		return models.StatusBrewing
	default:
		return models.StatusFresh
	}
}

// MoodOf buckets the distance between readyAt and now into a tier.
func MoodOf(readyAt *time.Time, now time.Time) models.Mood {
	if readyAt == nil {
		return models.MoodUnknown
	}
	if IsFuture(readyAt, now) {
		remaining := readyAt.Sub(now)
		switch {
		case remaining < ImminentWithin:
			return models.MoodImminent
		case remaining < AlmostReadyWithin:
			return models.MoodAlmostReady
		default:
			return models.MoodBrewing
		}
	}
	elapsed := now.Sub(*readyAt)
	switch {
	case elapsed < JustBrewedFor:
		return models.MoodJustBrewed
	case elapsed < FreshFor:
		return models.MoodFresh
	default:
		return models.MoodStale
	}
}

// Distance renders |readyAt - now| as e.g. "3 minutes" or "now".
func Distance(readyAt, now time.Time) string {
	return strings.TrimSpace(humanize.RelTime(readyAt, now, "", ""))
}

// Describe produces the full description used by both transports.
func Describe(readyAt *time.Time, now time.Time) models.Description {
	d := models.Description{
		Status: StatusOf(readyAt, now),
		Mood:   MoodOf(readyAt, now),
	}
	d.Label = Label(d.Mood)

	switch d.Status {
	case models.StatusUnknown:
		d.Text = TextUnknown
	case models.StatusBrewing:
		d.Distance = Distance(*readyAt, now)
		d.Text = textBrewing + d.Distance
		if d.Distance == distanceNow {
			d.Text = textAnyMoment
		}
	default:
		d.Distance = Distance(*readyAt, now)
		d.Text = textReadyAgo + d.Distance + " ago"
		if d.Distance == distanceNow {
			d.Text = textJustNow
		}
	}
	return d
}
