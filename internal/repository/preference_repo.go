package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PreferenceSQLite keeps restore records, one row per key.
type PreferenceSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewPreferenceSQLite(db *sql.DB) *PreferenceSQLite {
	return &PreferenceSQLite{db: db, now: time.Now}
}

const (
	upsertPreferenceSQL = `
		INSERT INTO preferences (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data=excluded.data,
			updated_at=excluded.updated_at
	`

	selectPreferenceSQL = `SELECT data FROM preferences WHERE key=?`
)

// Save writes data under key, replacing what was there.
func (r *PreferenceSQLite) Save(ctx context.Context, key uint32, data []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertPreferenceSQL, int64(key), data, r.now().UTC()); err != nil {
		return fmt.Errorf("save preference %#x: %w", key, err)
	}
	return nil
}

// Load returns the blob stored under key, or nil when there is none.
func (r *PreferenceSQLite) Load(ctx context.Context, key uint32) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, selectPreferenceSQL, int64(key)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load preference %#x: %w", key, err)
	}
	return data, nil
}
