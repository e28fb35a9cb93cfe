package storage

import (
	"context"
	"errors"
	"time"

	"dopust/internal/core"
)

// ErrNotFound is returned when no snapshot exists for the requested user and year.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotKey identifies one stored snapshot.
type SnapshotKey struct {
	Username string
	Year     int
}

// SnapshotStore persists per-user day classifications so reports keep working
// when the timesheet service is unreachable. A snapshot covers one whole year
// for one user and is replaced atomically on save.
type SnapshotStore interface {
	// SaveSnapshot replaces the stored classifications for username/year.
	SaveSnapshot(ctx context.Context, username string, year int, types map[string]core.Classification, fetchedAt time.Time) error

	// LoadSnapshot returns the stored classifications and the time they were
	// fetched. Returns ErrNotFound when nothing is stored for username/year.
	LoadSnapshot(ctx context.Context, username string, year int) (map[string]core.Classification, time.Time, error)

	// ListStale returns the keys of all snapshots fetched before olderThan.
	ListStale(ctx context.Context, olderThan time.Time) ([]SnapshotKey, error)

	Close() error
}
