package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dopust/internal/amqp"
	"dopust/internal/core"
	"dopust/internal/storage"
	"dopust/internal/timesheet"
)

// RefreshPublisher enqueues snapshot refresh jobs for the worker.
type RefreshPublisher interface {
	PublishSnapshotRefresh(ctx context.Context, username string, year int, reason string) error
}

var _ RefreshPublisher = (*amqp.Client)(nil)

// CalendarRequest carries the per-user inputs for one month calendar.
type CalendarRequest struct {
	Username          string
	Year              int
	Month             int
	Today             time.Time
	ExtraVacationDays map[string]bool
	DailyHours        float64
	StartedWorking    string
}

// ReportServiceConfig tunes snapshot staleness handling.
type ReportServiceConfig struct {
	// SnapshotTTL is the age past which the refresh policy considers a
	// snapshot stale.
	SnapshotTTL time.Duration

	// Policy decides when to enqueue a background refresh after a live read.
	Policy RefreshChecker
}

// ReportService assembles calendar and vacation planning data. Day
// classifications come from the live timesheet service when it is reachable,
// then from the stored snapshot, then from the public holiday calendar.
type ReportService struct {
	worklogs  timesheet.WorklogReader
	days      timesheet.DayTypeReader
	holidays  timesheet.DayTypeReader
	store     storage.SnapshotStore
	publisher RefreshPublisher
	config    ReportServiceConfig
}

// NewReportService builds a report service. publisher may be nil, in which
// case no background refreshes are requested.
func NewReportService(
	worklogs timesheet.WorklogReader,
	days timesheet.DayTypeReader,
	holidays timesheet.DayTypeReader,
	store storage.SnapshotStore,
	publisher RefreshPublisher,
	config ReportServiceConfig,
) *ReportService {
	if config.Policy == nil {
		config.Policy = AgeChecker{}
	}
	return &ReportService{
		worklogs:  worklogs,
		days:      days,
		holidays:  holidays,
		store:     store,
		publisher: publisher,
		config:    config,
	}
}

// MonthCalendar fetches worklogs and day classifications concurrently and
// folds them into a month report. Worklogs must come from the live service;
// day classifications fall back to the snapshot chain.
func (s *ReportService) MonthCalendar(ctx context.Context, req CalendarRequest) (core.MonthReport, error) {
	from := fmt.Sprintf("%04d-%02d-01", req.Year, req.Month)
	lastDay := time.Date(req.Year, time.Month(req.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	to := fmt.Sprintf("%04d-%02d-%02d", req.Year, req.Month, lastDay)

	var (
		logs  []core.WorklogEntry
		types map[string]core.Classification
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, err = s.worklogs.ListWorklogs(gctx, req.Username, from, to)
		if err != nil {
			return fmt.Errorf("list worklogs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		types, err = s.readDayTypes(gctx, req.Username, req.Year, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthReport{}, err
	}

	opts := core.MonthOptions{
		ExtraVacationDays: req.ExtraVacationDays,
		DailyHours:        req.DailyHours,
		StartedWorking:    req.StartedWorking,
	}
	return core.BuildMonthReport(req.Year, req.Month, logs, types, opts, req.Today), nil
}

// VacationGrid builds the (budget, days off) period count grid for a year.
func (s *ReportService) VacationGrid(ctx context.Context, username string, year, maxBudget int, today time.Time) (core.Grid, error) {
	types, err := s.planningDayTypes(ctx, username, year)
	if err != nil {
		return core.Grid{}, err
	}
	return core.BuildGrid(year, maxBudget, types, today), nil
}

// CellPeriods lists the concrete vacation periods behind one grid cell.
func (s *ReportService) CellPeriods(ctx context.Context, username string, year, spent, daysOff int, today time.Time) ([]core.PeriodMatch, error) {
	types, err := s.planningDayTypes(ctx, username, year)
	if err != nil {
		return nil, err
	}
	return core.FindPeriodsForCell(year, spent, daysOff, types, today), nil
}

func (s *ReportService) planningDayTypes(ctx context.Context, username string, year int) (map[string]core.Classification, error) {
	from, to := snapshotRange(year)
	return s.readDayTypes(ctx, username, year, from, to)
}

// readDayTypes returns classifications for [from, to]. The live timesheet
// service is preferred; on failure the stored snapshot is served and a refresh
// is enqueued, and as a last resort the holiday calendar fills in defaults.
func (s *ReportService) readDayTypes(ctx context.Context, username string, year int, from, to string) (map[string]core.Classification, error) {
	types, err := s.days.ListDayTypes(ctx, username, from, to)
	if err == nil {
		s.maybeRequestRefresh(ctx, username, year)
		return types, nil
	}
	liveErr := err
	slog.WarnContext(ctx, "Live day type fetch failed, falling back to snapshot",
		"username", username,
		"year", year,
		"error", liveErr)

	snap, fetchedAt, err := s.store.LoadSnapshot(ctx, username, year)
	if err == nil {
		slog.InfoContext(ctx, "Serving day types from snapshot",
			"username", username,
			"year", year,
			"fetched_at", fetchedAt)
		s.requestRefresh(ctx, username, year, amqp.ReasonFallback)
		return sliceRange(snap, from, to), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		slog.ErrorContext(ctx, "Snapshot load failed",
			"username", username,
			"year", year,
			"error", err)
	}

	if s.holidays != nil {
		types, err := s.holidays.ListDayTypes(ctx, username, from, to)
		if err == nil {
			slog.InfoContext(ctx, "Serving day types from holiday calendar",
				"username", username,
				"year", year)
			return types, nil
		}
		slog.WarnContext(ctx, "Holiday calendar fallback failed",
			"username", username,
			"year", year,
			"error", err)
	}

	return nil, fmt.Errorf("list day types: %w", liveErr)
}

// maybeRequestRefresh enqueues a refresh when the stored snapshot is missing
// or the policy considers it stale.
func (s *ReportService) maybeRequestRefresh(ctx context.Context, username string, year int) {
	if s.publisher == nil {
		return
	}

	_, fetchedAt, err := s.store.LoadSnapshot(ctx, username, year)
	if errors.Is(err, storage.ErrNotFound) {
		s.requestRefresh(ctx, username, year, amqp.ReasonStale)
		return
	}
	if err != nil {
		slog.WarnContext(ctx, "Snapshot age check failed",
			"username", username,
			"year", year,
			"error", err)
		return
	}

	if s.config.Policy.ShouldRefresh(fetchedAt, time.Now(), s.config.SnapshotTTL) {
		s.requestRefresh(ctx, username, year, amqp.ReasonStale)
	}
}

func (s *ReportService) requestRefresh(ctx context.Context, username string, year int, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSnapshotRefresh(ctx, username, year, reason); err != nil {
		slog.ErrorContext(ctx, "Failed to publish refresh request",
			"username", username,
			"year", year,
			"reason", reason,
			"error", err)
	}
}

func sliceRange(types map[string]core.Classification, from, to string) map[string]core.Classification {
	out := make(map[string]core.Classification, len(types))
	for day, class := range types {
		if day >= from && day <= to {
			out[day] = class
		}
	}
	return out
}
