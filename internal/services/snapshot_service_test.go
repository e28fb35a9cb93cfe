package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dopust/internal/core"
	"dopust/internal/storage"
	tsmemory "dopust/internal/timesheet/memory"
)

func TestSnapshotService_RefreshYear(t *testing.T) {
	ts := tsmemory.New()
	ts.SetDayType("ana", "2026-12-25", core.Holiday)
	ts.SetDayType("ana", "2027-01-06", core.Holiday)
	ts.SetDayType("ana", "2027-02-08", core.Holiday) // outside the snapshot range

	store := storage.NewMemoryStore()
	svc := NewSnapshotService(ts, store)

	if err := svc.RefreshYear(context.Background(), "ana", 2026); err != nil {
		t.Fatalf("RefreshYear() error = %v", err)
	}

	types, fetchedAt, err := store.LoadSnapshot(context.Background(), "ana", 2026)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if types["2026-12-25"] != core.Holiday {
		t.Errorf("snapshot[2026-12-25] = %v, want %v", types["2026-12-25"], core.Holiday)
	}
	// The January tail of the following year belongs to this snapshot so the
	// planning window is covered.
	if types["2027-01-06"] != core.Holiday {
		t.Errorf("snapshot[2027-01-06] = %v, want %v", types["2027-01-06"], core.Holiday)
	}
	if _, ok := types["2027-02-08"]; ok {
		t.Error("snapshot should not include days past January 10 of the next year")
	}
	if time.Since(fetchedAt) > time.Minute {
		t.Errorf("fetchedAt = %v, want a recent timestamp", fetchedAt)
	}
}

func TestSnapshotService_RefreshYear_FetchError(t *testing.T) {
	ts := tsmemory.New()
	ts.FailWith(errors.New("jira unreachable"))

	svc := NewSnapshotService(ts, storage.NewMemoryStore())

	err := svc.RefreshYear(context.Background(), "ana", 2026)
	if err == nil {
		t.Fatal("RefreshYear() expected error when the fetch fails")
	}
	if !strings.Contains(err.Error(), "fetch day types") {
		t.Errorf("RefreshYear() error = %v, want it to mention the fetch", err)
	}
}

func TestSnapshotRange(t *testing.T) {
	from, to := snapshotRange(2026)
	if from != "2026-01-01" {
		t.Errorf("snapshotRange(2026) from = %s, want 2026-01-01", from)
	}
	if to != "2027-01-10" {
		t.Errorf("snapshotRange(2026) to = %s, want 2027-01-10", to)
	}
}
