package metrics

import "time"

// Recorder defines the observability hooks used by the coffee services.
// Implementations must tolerate a nil receiver so metrics stay optional.
type Recorder interface {
	IncCommand(source, command string)
	IncBrewOutcome(source, outcome string)
	IncAnnouncement(channel string, success bool)
	IncDroppedCommand(reason string)
	IncAlertFired()
	SetReadyAt(readyAt *time.Time)
}

// NoopRecorder is the default when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) IncCommand(string, string)     {}
func (NoopRecorder) IncBrewOutcome(string, string) {}
func (NoopRecorder) IncAnnouncement(string, bool)  {}
func (NoopRecorder) IncDroppedCommand(string)      {}
func (NoopRecorder) IncAlertFired()                {}
func (NoopRecorder) SetReadyAt(*time.Time)         {}
