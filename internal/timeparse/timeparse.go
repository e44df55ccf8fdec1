// Package timeparse resolves phrases such as "in 5 minutes", "at 3pm" or
// "yesterday" into timestamps.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrNoTime is returned when the text contains no recognisable time expression.
var ErrNoTime = errors.New("no time expression found")

// ErrInvalidDelay is returned by ParseDelay for empty or non-positive delays.
var ErrInvalidDelay = errors.New("invalid delay")

// Parser resolves a natural language time expression relative to base.
type Parser interface {
	Parse(text string, base time.Time) (time.Time, error)
}

// WhenParser is the Parser backed by olebedev/when with English and common rules.
type WhenParser struct {
	w *when.Parser
}

func New() *WhenParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{w: w}
}

func (p *WhenParser) Parse(text string, base time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrNoTime
	}
	r, err := p.w.Parse(text, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, ErrNoTime
	}
	return r.Time, nil
}

// ParseDelay accepts Go duration syntax ("2m30s") or a phrase ("2 minutes"),
// the latter resolved as "in <text>" from base.
func ParseDelay(text string, p Parser, base time.Time) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrInvalidDelay
	}
	if d, err := time.ParseDuration(text); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidDelay, text)
		}
		return d, nil
	}
	t, err := p.Parse("in "+text, base)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDelay, text, err)
	}
	d := t.Sub(base)
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q resolves to the past", ErrInvalidDelay, text)
	}
	return d, nil
}
