package repository

import (
	"context"
	"database/sql"
	"time"

	"fireplace_rf/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// PreferenceRepo is a key to blob store. Load returns nil data when the key is absent.
type PreferenceRepo interface {
	Load(ctx context.Context, key uint32) ([]byte, error)
	Save(ctx context.Context, key uint32, data []byte) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.FireplaceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.FireplaceEvent, error)
}

type Repository struct {
	Preferences PreferenceRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Preferences: NewPreferenceSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
