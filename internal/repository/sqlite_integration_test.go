package repository_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"fireplace_rf/internal/models"
	"fireplace_rf/internal/repository"
	"fireplace_rf/internal/repository/db"
)

func openRepo(t *testing.T) *repository.Repository {
	t.Helper()
	conn, err := db.InitDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewRepository(conn)
}

func TestSQLite_PreferencesRoundTrip(t *testing.T) {
	repo := openRepo(t)
	c := context.Background()

	got, err := repo.Preferences.Load(c, 42)
	if err != nil || got != nil {
		t.Fatalf("Load before save = %v, %v", got, err)
	}
	if err := repo.Preferences.Save(c, 42, []byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Preferences.Save(c, 42, []byte("second")); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	got, err = repo.Preferences.Load(c, 42)
	if err != nil || !bytes.Equal(got, []byte("second")) {
		t.Fatalf("Load = %q, %v", got, err)
	}
}

func TestSQLite_EventsFilterByRangeAndType(t *testing.T) {
	repo := openRepo(t)
	c := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events := []models.FireplaceEvent{
		{OccurredAt: base, Type: models.EventTurnOn, Description: "a"},
		{OccurredAt: base.Add(time.Minute), Type: models.EventPowerSet, Description: "b", Metadata: map[string]any{"power": 2}},
		{OccurredAt: base.Add(2 * time.Minute), Type: models.EventTurnOff, Description: "c"},
	}
	for _, e := range events {
		if err := repo.EventRepo.Append(c, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := repo.EventRepo.List(c, time.Time{}, time.Time{}, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("List all = %d, %v", len(all), err)
	}
	if all[0].Description != "a" || all[2].Description != "c" {
		t.Fatalf("order = %+v", all)
	}

	window, err := repo.EventRepo.List(c, base.Add(30*time.Second), base.Add(3*time.Minute), "")
	if err != nil || len(window) != 2 {
		t.Fatalf("List window = %d, %v", len(window), err)
	}

	typed, err := repo.EventRepo.List(c, time.Time{}, time.Time{}, "power_set")
	if err != nil || len(typed) != 1 || typed[0].Description != "b" {
		t.Fatalf("List typed = %+v, %v", typed, err)
	}
}

func TestSQLite_DuplicateUser(t *testing.T) {
	repo := openRepo(t)
	c := context.Background()

	if _, err := repo.Auth.Create(c, "alice", "hash"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Auth.Create(c, "alice", "hash2"); !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("duplicate Create err = %v", err)
	}
	u, err := repo.Auth.GetByUsername(c, "alice")
	if err != nil || u == nil || u.PasswordHash != "hash" {
		t.Fatalf("GetByUsername = %+v, %v", u, err)
	}
}
