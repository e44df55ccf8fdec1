package service

import (
	"context"
	"fmt"
	"sync"

	"coffeebot/internal/logger"
	"coffeebot/internal/metrics"
	"coffeebot/internal/models"
)

// Announcer delivers an announcement to one outbound channel.
type Announcer interface {
	Announce(ctx context.Context, a models.Announcement) error
}

// AnnouncerFunc adapts a plain function to Announcer.
type AnnouncerFunc func(ctx context.Context, a models.Announcement) error

func (f AnnouncerFunc) Announce(ctx context.Context, a models.Announcement) error {
	return f(ctx, a)
}

type sink struct {
	name string
	a    Announcer
}

// Fanout delivers each announcement to every registered sink. Sink failures
// are logged and counted but never returned: the core keeps running when a
// transport is down.
type Fanout struct {
	mu      sync.RWMutex
	sinks   []sink
	log     *logger.Logger
	metrics metrics.Recorder
}

func NewFanout(log *logger.Logger, rec metrics.Recorder) *Fanout {
	if log == nil {
		log = logger.Nop()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Fanout{log: log, metrics: rec}
}

// Add registers a sink. A nil announcer is ignored.
func (f *Fanout) Add(name string, a Announcer) {
	if a == nil {
		return
	}
	f.mu.Lock()
	f.sinks = append(f.sinks, sink{name: name, a: a})
	f.mu.Unlock()
}

// Len returns the number of registered sinks.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sinks)
}

func (f *Fanout) Announce(ctx context.Context, a models.Announcement) error {
	f.mu.RLock()
	sinks := append([]sink(nil), f.sinks...)
	f.mu.RUnlock()

	for _, s := range sinks {
		err := f.deliver(ctx, s, a)
		f.metrics.IncAnnouncement(s.name, err == nil)
		if err != nil {
			f.log.Warnw("announce_failed", "channel", s.name, "kind", a.Kind, "err", err)
			continue
		}
		f.log.Infow("announce_sent", "channel", s.name, "kind", a.Kind)
	}
	return nil
}

func (f *Fanout) deliver(ctx context.Context, s sink, a models.Announcement) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("announcer %s panicked: %v", s.name, r)
		}
	}()
	return s.a.Announce(ctx, a)
}
