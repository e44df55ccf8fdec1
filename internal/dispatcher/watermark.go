package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coffeebot/internal/models"
	"coffeebot/internal/repository"
)

// maxSeenIDs bounds the ids remembered for the watermark instant.
const maxSeenIDs = 32

// ResetWatermark moves the watermark to now so messages sent while the
// process was down are not replayed. Chat timestamps carry whole seconds, so
// the watermark is truncated to the second.
func (d *Dispatcher) ResetWatermark(ctx context.Context, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	mark := now.Truncate(time.Second)
	if err := repository.SaveTime(ctx, d.store, repository.KeyLastCommand, mark); err != nil {
		return fmt.Errorf("save last_command: %w", err)
	}
	if err := d.store.Delete(ctx, repository.KeyLastEventID); err != nil {
		return fmt.Errorf("clear last_event_id: %w", err)
	}
	return nil
}

// admit applies the ordering guard. An event older than the watermark is
// dropped. An event at the watermark instant is dropped when its id was
// already seen there. Otherwise the watermark advances before the command runs.
func (d *Dispatcher) admit(ctx context.Context, ev models.ChatEvent) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	origin := ev.OriginTimestamp.UTC()
	mark, err := repository.LoadTime(ctx, d.store, repository.KeyLastCommand)
	if err != nil {
		return false, fmt.Errorf("load last_command: %w", err)
	}
	raw, _, err := d.store.Get(ctx, repository.KeyLastEventID)
	if err != nil {
		return false, fmt.Errorf("load last_event_id: %w", err)
	}
	seen := splitIDs(raw)

	switch {
	case mark != nil && origin.Before(*mark):
		d.metrics.IncDroppedCommand("stale")
		d.log.Infow("chat_stale_dropped", "event_id", ev.EventID, "origin", origin, "watermark", *mark)
		return false, nil
	case mark != nil && origin.Equal(*mark):
		if ev.EventID != "" && contains(seen, ev.EventID) {
			d.metrics.IncDroppedCommand("duplicate")
			d.log.Infow("chat_duplicate_dropped", "event_id", ev.EventID, "origin", origin)
			return false, nil
		}
		seen = append(seen, ev.EventID)
		if len(seen) > maxSeenIDs {
			seen = seen[len(seen)-maxSeenIDs:]
		}
	default:
		seen = []string{ev.EventID}
		if err := repository.SaveTime(ctx, d.store, repository.KeyLastCommand, origin); err != nil {
			return false, fmt.Errorf("save last_command: %w", err)
		}
	}

	if err := d.store.Set(ctx, repository.KeyLastEventID, strings.Join(seen, ",")); err != nil {
		return false, fmt.Errorf("save last_event_id: %w", err)
	}
	return true, nil
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
