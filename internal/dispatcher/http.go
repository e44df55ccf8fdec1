package dispatcher

import (
	"context"
	"time"

	"coffeebot/internal/brewclock"
	"coffeebot/internal/models"
)

// Action is an HTTP-triggered command.
type Action string

const (
	ActionBrew   Action = "brew"
	ActionFresh  Action = "fresh"
	ActionStatus Action = "status"
)

// Code classifies the result of an action for response shaping.
type Code int

const (
	CodeAccepted Code = iota
	CodeConflict
	CodeFailed
	CodeNotFound
)

func (c Code) String() string {
	switch c {
	case CodeAccepted:
		return "accepted"
	case CodeConflict:
		return "conflict"
	case CodeFailed:
		return "failed"
	default:
		return "not_found"
	}
}

// Outcome is the result of Do. ReadyAt is the pot's ReadyAt after the action.
type Outcome struct {
	Code    Code
	ReadyAt *time.Time
	Err     error
}

// Do runs an HTTP action. It never panics on service errors; they come back as CodeFailed.
func (d *Dispatcher) Do(ctx context.Context, action Action, arg string) Outcome {
	switch action {
	case ActionBrew:
		d.metrics.IncCommand(string(models.SourceHTTP), string(action))
		res, err := d.coffee.Brew(ctx, models.SourceHTTP, d.announceOnStart)
		if err != nil {
			return d.httpFailed(action, err)
		}
		readyAt := res.ReadyAt
		if res.Outcome == models.BrewConflict {
			return Outcome{Code: CodeConflict, ReadyAt: &readyAt}
		}
		return Outcome{Code: CodeAccepted, ReadyAt: &readyAt}

	case ActionFresh:
		d.metrics.IncCommand(string(models.SourceHTTP), string(action))
		readyAt, err := d.coffee.MarkFresh(ctx, arg, models.SourceHTTP)
		if err != nil {
			return d.httpFailed(action, err)
		}
		return Outcome{Code: CodeAccepted, ReadyAt: &readyAt}

	case ActionStatus:
		st, err := d.coffee.Query(ctx)
		if err != nil {
			return d.httpFailed(action, err)
		}
		return Outcome{Code: CodeAccepted, ReadyAt: st.ReadyAt}
	}
	return Outcome{Code: CodeNotFound}
}

func (d *Dispatcher) httpFailed(action Action, err error) Outcome {
	d.log.Errorw("http_action_failed", "action", action, "err", err)
	return Outcome{Code: CodeFailed, Err: err}
}

func describe(readyAt time.Time, now time.Time) string {
	return brewclock.Describe(&readyAt, now).Text
}
