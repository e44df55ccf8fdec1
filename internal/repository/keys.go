package repository

import (
	"context"
	"fmt"
	"time"
)

// Persisted State Store keys.
const (
	KeyLastCoffee   = "last_coffee"
	KeyLastCommand  = "last_command"
	KeyLastEventID  = "last_event_id"
	KeyCoffeeRoomID = "coffee_room_id"
	KeyBrewDelay    = "brew_delay"
	KeyHTTPPort     = "http_port"
	KeyHTTPPrefix   = "http_prefix"
)

// TimeLayout is the ISO-8601 encoding used for every stored timestamp.
const TimeLayout = time.RFC3339Nano

// LoadTime reads a timestamp key. A missing key yields nil.
func LoadTime(ctx context.Context, s KVStore, key string) (*time.Time, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("decode %q=%q: %w", key, raw, err)
	}
	t = t.UTC()
	return &t, nil
}

// SaveTime writes t as UTC ISO-8601.
func SaveTime(ctx context.Context, s KVStore, key string, t time.Time) error {
	return s.Set(ctx, key, t.UTC().Format(TimeLayout))
}
