package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KVSQLite is the durable State Store: one row per key, last write wins.
type KVSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewKVSQLite(db *sql.DB) *KVSQLite {
	return &KVSQLite{db: db, now: time.Now}
}

const (
	upsertValueSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectValueSQL = `SELECT value FROM kv_store WHERE key=?`

	deleteValueSQL = `DELETE FROM kv_store WHERE key=?`
)

// Get returns the stored value; ok is false when the key is absent.
func (r *KVSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, selectValueSQL, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key; updated_at is always persisted as UTC.
func (r *KVSQLite) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertValueSQL, key, value, r.now().UTC()); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete makes key absent. Deleting a missing key is not an error.
func (r *KVSQLite) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteValueSQL, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
