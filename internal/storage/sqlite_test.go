package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dopust/internal/core"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	types := map[string]core.Classification{
		"2026-12-24": core.WorkingDay,
		"2026-12-25": core.Holiday,
		"2026-12-26": core.HolidayAndNonWorkingDay,
		"2026-12-27": core.NonWorkingDay,
	}
	fetchedAt := time.Date(2026, 12, 1, 9, 30, 0, 0, time.UTC)

	if err := store.SaveSnapshot(ctx, "ana", 2026, types, fetchedAt); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, gotFetched, err := store.LoadSnapshot(ctx, "ana", 2026)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(got) != len(types) {
		t.Fatalf("LoadSnapshot() returned %d days, want %d", len(got), len(types))
	}
	for day, want := range types {
		if got[day] != want {
			t.Errorf("LoadSnapshot()[%s] = %s, want %s", day, got[day], want)
		}
	}
	if !gotFetched.Equal(fetchedAt) {
		t.Errorf("LoadSnapshot() fetchedAt = %v, want %v", gotFetched, fetchedAt)
	}
}

func TestSQLiteStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first := map[string]core.Classification{
		"2026-01-01": core.Holiday,
		"2026-01-02": core.Holiday,
	}
	if err := store.SaveSnapshot(ctx, "ana", 2026, first, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	second := map[string]core.Classification{
		"2026-02-08": core.HolidayAndNonWorkingDay,
	}
	if err := store.SaveSnapshot(ctx, "ana", 2026, second, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, _, err := store.LoadSnapshot(ctx, "ana", 2026)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("LoadSnapshot() returned %d days, want 1", len(got))
	}
	if _, stale := got["2026-01-01"]; stale {
		t.Error("LoadSnapshot() still contains a day from the replaced snapshot")
	}
	if got["2026-02-08"] != core.HolidayAndNonWorkingDay {
		t.Errorf("LoadSnapshot()[2026-02-08] = %s, want %s", got["2026-02-08"], core.HolidayAndNonWorkingDay)
	}
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.LoadSnapshot(context.Background(), "nobody", 2026)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_SnapshotsAreScopedToUserAndYear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	save := func(username string, year int, day string) {
		t.Helper()
		err := store.SaveSnapshot(ctx, username, year,
			map[string]core.Classification{day: core.Holiday},
			time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("SaveSnapshot(%s, %d) error = %v", username, year, err)
		}
	}
	save("ana", 2026, "2026-04-27")
	save("ana", 2027, "2027-04-27")
	save("bor", 2026, "2026-06-25")

	got, _, err := store.LoadSnapshot(ctx, "ana", 2026)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("LoadSnapshot() returned %d days, want 1", len(got))
	}
	if _, ok := got["2026-04-27"]; !ok {
		t.Error("LoadSnapshot() is missing the day saved for ana/2026")
	}
}

func TestSQLiteStore_ListStale(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	old := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	data := map[string]core.Classification{"2026-11-01": core.Holiday}
	if err := store.SaveSnapshot(ctx, "ana", 2026, data, old); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := store.SaveSnapshot(ctx, "bor", 2026, data, fresh); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	keys, err := store.ListStale(ctx, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListStale() error = %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("ListStale() returned %d keys, want 1", len(keys))
	}
	if keys[0] != (SnapshotKey{Username: "ana", Year: 2026}) {
		t.Errorf("ListStale()[0] = %+v, want ana/2026", keys[0])
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	store, dbPath := newTestStore(t)
	ctx := context.Background()

	types := map[string]core.Classification{"2026-12-25": core.Holiday}
	if err := store.SaveSnapshot(ctx, "ana", 2026, types, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()

	got, _, err := reopened.LoadSnapshot(ctx, "ana", 2026)
	if err != nil {
		t.Fatalf("LoadSnapshot() after reopen error = %v", err)
	}
	if got["2026-12-25"] != core.Holiday {
		t.Errorf("LoadSnapshot()[2026-12-25] = %s, want %s", got["2026-12-25"], core.Holiday)
	}
}
