package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coffeebot/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// eventTimeLayout is fixed width so text comparison in SQL orders chronologically.
const eventTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Append inserts a new event. If EventID or OccurredAt are empty, they’re set.
func (r *EventSQLite) Append(ctx context.Context, e models.CoffeeEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	// marshal metadata if present
	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO coffee_events (id, occurred_at, type, message, source, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.UTC().Format(eventTimeLayout),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		string(e.Source),
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", e.EventID, err)
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive) and/or type, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.CoffeeEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(eventTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(eventTimeLayout))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, occurred_at, type, message, source, meta FROM coffee_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CoffeeEvent, 0, 64)
	for rows.Next() {
		var (
			ev       models.CoffeeEvent
			occurred string
			source   string
			metaStr  sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &occurred, &ev.Type, &ev.Description, &source, &metaStr); err != nil {
			return nil, err
		}
		ts, err := time.Parse(eventTimeLayout, occurred)
		if err != nil {
			return nil, fmt.Errorf("decode occurred_at %q: %w", occurred, err)
		}
		ev.OccurredAt = ts.UTC()
		ev.Source = models.Source(source)

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
