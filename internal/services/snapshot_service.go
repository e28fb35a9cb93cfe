package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dopust/internal/storage"
	"dopust/internal/timesheet"
)

// SnapshotService refreshes stored day snapshots from the timesheet service.
// A snapshot for year Y covers Y-01-01 through (Y+1)-01-10 so that the
// vacation planning window reaching into January is covered too.
type SnapshotService struct {
	days  timesheet.DayTypeReader
	store storage.SnapshotStore
}

func NewSnapshotService(days timesheet.DayTypeReader, store storage.SnapshotStore) *SnapshotService {
	return &SnapshotService{
		days:  days,
		store: store,
	}
}

// RefreshYear fetches the day classifications for one user and year and
// replaces the stored snapshot.
func (s *SnapshotService) RefreshYear(ctx context.Context, username string, year int) error {
	from, to := snapshotRange(year)

	types, err := s.days.ListDayTypes(ctx, username, from, to)
	if err != nil {
		return fmt.Errorf("fetch day types: %w", err)
	}

	if err := s.store.SaveSnapshot(ctx, username, year, types, time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Refreshed day snapshot",
		"username", username,
		"year", year,
		"day_count", len(types))

	return nil
}

// snapshotRange returns the date range covered by the snapshot for year.
func snapshotRange(year int) (from, to string) {
	return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-10", year+1)
}
