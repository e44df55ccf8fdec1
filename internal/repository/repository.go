package repository

import (
	"context"
	"database/sql"
	"time"

	"coffeebot/internal/models"
)

// KVStore is the durable string-to-string State Store.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.CoffeeEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.CoffeeEvent, error)
}

type Repository struct {
	Store     KVStore
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Store:     NewKVSQLite(db),
		EventRepo: NewEventSQLite(db),
	}
}
