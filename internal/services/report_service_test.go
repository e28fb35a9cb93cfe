package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dopust/internal/amqp"
	"dopust/internal/core"
	"dopust/internal/storage"
	"dopust/internal/timesheet"
	tsmemory "dopust/internal/timesheet/memory"
)

type refreshEvent struct {
	username string
	year     int
	reason   string
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []refreshEvent
}

func (p *capturingPublisher) PublishSnapshotRefresh(_ context.Context, username string, year int, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, refreshEvent{username: username, year: year, reason: reason})
	return nil
}

func (p *capturingPublisher) published() []refreshEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]refreshEvent(nil), p.events...)
}

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestReportService_MonthCalendar(t *testing.T) {
	ts := tsmemory.New()
	ts.AddWorklog("ana", core.WorklogEntry{Date: "2026-08-03", Seconds: 27000, Summary: "DEV-1 Import pipeline"})
	ts.SetDayType("ana", "2026-08-03", core.WorkingDay)
	ts.SetDayType("ana", "2026-08-04", core.WorkingDay)

	store := storage.NewMemoryStore()
	pub := &capturingPublisher{}
	svc := NewReportService(ts, ts, nil, store, pub, ReportServiceConfig{
		SnapshotTTL: time.Hour,
		Policy:      AgeChecker{},
	})

	report, err := svc.MonthCalendar(context.Background(), CalendarRequest{
		Username: "ana",
		Year:     2026,
		Month:    8,
		Today:    utcDay(2026, time.August, 4),
	})
	if err != nil {
		t.Fatalf("MonthCalendar() error = %v", err)
	}

	if report.Worked["2026-08-03"] != 27000 {
		t.Errorf("Worked[2026-08-03] = %v, want 27000", report.Worked["2026-08-03"])
	}
	if report.DayTypes["2026-08-03"] != core.WorkingDay {
		t.Errorf("DayTypes[2026-08-03] = %v, want %v", report.DayTypes["2026-08-03"], core.WorkingDay)
	}

	// No snapshot existed yet, so a bootstrap refresh must have been enqueued.
	events := pub.published()
	if len(events) != 1 {
		t.Fatalf("published %d refresh events, want 1", len(events))
	}
	if events[0] != (refreshEvent{username: "ana", year: 2026, reason: amqp.ReasonStale}) {
		t.Errorf("published event = %+v, want ana/2026/%s", events[0], amqp.ReasonStale)
	}
}

func TestReportService_MonthCalendar_WorklogFailure(t *testing.T) {
	worklogs := tsmemory.New()
	worklogs.FailWith(errors.New("jira unreachable"))

	days := tsmemory.New()
	days.SetDayType("ana", "2026-08-03", core.WorkingDay)

	svc := NewReportService(worklogs, days, nil, storage.NewMemoryStore(), nil, ReportServiceConfig{})

	_, err := svc.MonthCalendar(context.Background(), CalendarRequest{
		Username: "ana",
		Year:     2026,
		Month:    8,
		Today:    utcDay(2026, time.August, 4),
	})
	if err == nil {
		t.Fatal("MonthCalendar() expected error when worklogs are unavailable")
	}
	if !strings.Contains(err.Error(), "list worklogs") {
		t.Errorf("MonthCalendar() error = %v, want it to mention worklogs", err)
	}
}

func TestReportService_FallsBackToSnapshot(t *testing.T) {
	days := tsmemory.New()
	days.FailWith(errors.New("jira unreachable"))

	store := storage.NewMemoryStore()
	saved := map[string]core.Classification{
		"2026-12-25": core.Holiday,
		"2026-12-28": core.Holiday,
	}
	if err := store.SaveSnapshot(context.Background(), "ana", 2026, saved, utcDay(2026, time.December, 1)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	pub := &capturingPublisher{}
	svc := NewReportService(nil, days, nil, store, pub, ReportServiceConfig{})

	grid, err := svc.VacationGrid(context.Background(), "ana", 2026, 5, utcDay(2026, time.December, 14))
	if err != nil {
		t.Fatalf("VacationGrid() error = %v", err)
	}
	if grid.MaxBudget != 5 {
		t.Errorf("Grid.MaxBudget = %d, want 5", grid.MaxBudget)
	}

	events := pub.published()
	if len(events) != 1 || events[0].reason != amqp.ReasonFallback {
		t.Errorf("published events = %+v, want one %s event", events, amqp.ReasonFallback)
	}
}

func TestReportService_FallsBackToHolidayCalendar(t *testing.T) {
	days := tsmemory.New()
	days.FailWith(errors.New("jira unreachable"))

	holidaySrc := tsmemory.New()
	holidaySrc.AddHoliday(2026, "2026-12-25", "božič")
	holidays := timesheet.HolidayDayTypes{Source: holidaySrc}

	pub := &capturingPublisher{}
	svc := NewReportService(nil, days, holidays, storage.NewMemoryStore(), pub, ReportServiceConfig{})

	today := utcDay(2026, time.December, 14)
	grid, err := svc.VacationGrid(context.Background(), "ana", 2026, 3, today)
	if err != nil {
		t.Fatalf("VacationGrid() error = %v", err)
	}
	if grid.MaxBudget != 3 {
		t.Errorf("Grid.MaxBudget = %d, want 3", grid.MaxBudget)
	}

	// No snapshot to refresh and the live service is down: nothing published.
	if events := pub.published(); len(events) != 0 {
		t.Errorf("published events = %+v, want none", events)
	}
}

func TestReportService_AllSourcesFail(t *testing.T) {
	days := tsmemory.New()
	days.FailWith(errors.New("jira unreachable"))

	svc := NewReportService(nil, days, nil, storage.NewMemoryStore(), nil, ReportServiceConfig{})

	_, err := svc.VacationGrid(context.Background(), "ana", 2026, 5, utcDay(2026, time.December, 14))
	if err == nil {
		t.Fatal("VacationGrid() expected error when every source fails")
	}
	if !strings.Contains(err.Error(), "list day types") {
		t.Errorf("VacationGrid() error = %v, want it to mention day types", err)
	}
}

func TestReportService_RefreshPolicy(t *testing.T) {
	tests := []struct {
		name      string
		policy    RefreshChecker
		fetchedAt time.Time
		wantEvent bool
	}{
		{
			name:      "never policy skips fresh and stale alike",
			policy:    NeverChecker{},
			fetchedAt: utcDay(2020, time.January, 1),
			wantEvent: false,
		},
		{
			name:      "always policy refreshes fresh snapshots",
			policy:    AlwaysChecker{},
			fetchedAt: time.Now(),
			wantEvent: true,
		},
		{
			name:      "age policy refreshes old snapshots",
			policy:    AgeChecker{},
			fetchedAt: utcDay(2020, time.January, 1),
			wantEvent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := tsmemory.New()
			days.SetDayType("ana", "2026-12-25", core.Holiday)

			store := storage.NewMemoryStore()
			saved := map[string]core.Classification{"2026-12-25": core.Holiday}
			if err := store.SaveSnapshot(context.Background(), "ana", 2026, saved, tt.fetchedAt); err != nil {
				t.Fatalf("SaveSnapshot() error = %v", err)
			}

			pub := &capturingPublisher{}
			svc := NewReportService(nil, days, nil, store, pub, ReportServiceConfig{
				SnapshotTTL: 24 * time.Hour,
				Policy:      tt.policy,
			})

			if _, err := svc.VacationGrid(context.Background(), "ana", 2026, 5, utcDay(2026, time.December, 14)); err != nil {
				t.Fatalf("VacationGrid() error = %v", err)
			}

			events := pub.published()
			if tt.wantEvent && len(events) != 1 {
				t.Errorf("published %d events, want 1", len(events))
			}
			if !tt.wantEvent && len(events) != 0 {
				t.Errorf("published events = %+v, want none", events)
			}
		})
	}
}

func TestReportService_CellPeriods(t *testing.T) {
	days := tsmemory.New()
	for _, date := range []string{"2026-12-25", "2026-12-28", "2026-12-29", "2026-12-30", "2026-12-31"} {
		days.SetDayType("ana", date, core.Holiday)
	}

	svc := NewReportService(nil, days, nil, storage.NewMemoryStore(), nil, ReportServiceConfig{})

	matches, err := svc.CellPeriods(context.Background(), "ana", 2026, 2, 9, utcDay(2026, time.December, 14))
	if err != nil {
		t.Fatalf("CellPeriods() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("CellPeriods() returned %d matches, want 1", len(matches))
	}
}
