package http

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseCalendarParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"valid", "year=2026&month=8&username=ana&hash=x", ""},
		{"missing year", "month=8&username=ana", "invalid year"},
		{"year too small", "year=1999&month=8&username=ana", "between 2000 and 2100"},
		{"year too large", "year=2101&month=8&username=ana", "between 2000 and 2100"},
		{"month out of range", "year=2026&month=13&username=ana", "invalid month"},
		{"missing username", "year=2026&month=8", "username is required"},
		{"bad daily hours", "year=2026&month=8&username=ana&dailyHours=25", "dailyHours"},
		{"bad vacation day", "year=2026&month=8&username=ana&vacationDays=2026-13-99", "invalid vacation day"},
		{"bad started working", "year=2026&month=8&username=ana&startedWorking=not-a-date", "startedWorking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/calendar?"+tt.query, nil)
			_, err := parseCalendarParams(r)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseCalendarParams_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/calendar?year=2026&month=8&username=ana&hash=x", nil)
	p, err := parseCalendarParams(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.DailyHours != 7.5 {
		t.Fatalf("default daily hours = %v, want 7.5", p.DailyHours)
	}
	if p.VacationDays != nil {
		t.Fatalf("expected nil vacation days, got %v", p.VacationDays)
	}
	if p.StartedWorking != "" {
		t.Fatalf("expected empty started working, got %q", p.StartedWorking)
	}
}

func TestParseCalendarParams_VacationDayList(t *testing.T) {
	r := httptest.NewRequest("GET", "/calendar?year=2026&month=8&username=ana&vacationDays=2026-08-03,2026-08-04", nil)
	p, err := parseCalendarParams(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.VacationDays) != 2 || !p.VacationDays["2026-08-03"] || !p.VacationDays["2026-08-04"] {
		t.Fatalf("vacation days = %v", p.VacationDays)
	}
}

func TestParseGridParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantBudget int
		wantErr    string
	}{
		{"default budget", "year=2026&username=ana&hash=x", 5, ""},
		{"explicit budget", "year=2026&username=ana&hash=x&budget=12", 12, ""},
		{"budget too small", "year=2026&username=ana&budget=0", 0, "invalid budget"},
		{"budget too large", "year=2026&username=ana&budget=51", 0, "invalid budget"},
		{"missing username", "year=2026", 0, "username is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/vacation-grid?"+tt.query, nil)
			p, err := parseGridParams(r, 5)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Budget != tt.wantBudget {
				t.Fatalf("budget = %d, want %d", p.Budget, tt.wantBudget)
			}
		})
	}
}

func TestParseDetailParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/vacation-grid-detail?year=2026&username=ana&hash=x&spent=2&off=9", nil)
	p, err := parseDetailParams(r, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Spent != 2 || p.DaysOff != 9 {
		t.Fatalf("spent/off = %d/%d, want 2/9", p.Spent, p.DaysOff)
	}

	r = httptest.NewRequest("GET", "/vacation-grid-detail?year=2026&username=ana&spent=-1&off=9", nil)
	if _, err := parseDetailParams(r, 5); err == nil {
		t.Fatal("negative spend accepted")
	}

	r = httptest.NewRequest("GET", "/vacation-grid-detail?year=2026&username=ana&spent=2&off=0", nil)
	if _, err := parseDetailParams(r, 5); err == nil {
		t.Fatal("zero days off accepted")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  ana\x00\x1fnovak "); got != "ananovak" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}
