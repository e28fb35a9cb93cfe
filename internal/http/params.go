package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dopust/internal/core"
)

// Query parameter bounds. Years outside this window are rejected before any
// work happens; the budget bounds match the recalculation form.
const (
	minYear   = 2000
	maxYear   = 2100
	minBudget = 1
	maxBudget = 50
)

type calendarParams struct {
	Year           int
	Month          int
	Username       string
	Hash           string
	VacationDays   map[string]bool
	DailyHours     float64
	StartedWorking string
}

type gridParams struct {
	Year     int
	Username string
	Hash     string
	Budget   int
}

type detailParams struct {
	gridParams
	Spent   int
	DaysOff int
}

func parseCalendarParams(r *http.Request) (calendarParams, error) {
	q := r.URL.Query()

	year, err := parseIntParam(q.Get("year"), "year", minYear, maxYear)
	if err != nil {
		return calendarParams{}, err
	}
	month, err := parseIntParam(q.Get("month"), "month", 1, 12)
	if err != nil {
		return calendarParams{}, err
	}
	username := sanitizeInput(q.Get("username"))
	if username == "" {
		return calendarParams{}, fmt.Errorf("username is required")
	}

	dailyHours := core.DefaultDailyHours
	if v := strings.TrimSpace(q.Get("dailyHours")); v != "" {
		dailyHours, err = strconv.ParseFloat(v, 64)
		if err != nil || dailyHours < 1 || dailyHours > 24 {
			return calendarParams{}, fmt.Errorf("invalid dailyHours '%s': must be a number between 1 and 24", v)
		}
	}

	vacationDays, err := parseISODateList(q.Get("vacationDays"))
	if err != nil {
		return calendarParams{}, err
	}

	startedWorking := strings.TrimSpace(q.Get("startedWorking"))
	if startedWorking != "" {
		if _, err := time.Parse("2006-01-02", startedWorking); err != nil {
			return calendarParams{}, fmt.Errorf("invalid startedWorking date '%s': must be YYYY-MM-DD", startedWorking)
		}
	}

	return calendarParams{
		Year:           year,
		Month:          month,
		Username:       username,
		Hash:           q.Get("hash"),
		VacationDays:   vacationDays,
		DailyHours:     dailyHours,
		StartedWorking: startedWorking,
	}, nil
}

func parseGridParams(r *http.Request, defaultBudget int) (gridParams, error) {
	q := r.URL.Query()

	year, err := parseIntParam(q.Get("year"), "year", minYear, maxYear)
	if err != nil {
		return gridParams{}, err
	}
	username := sanitizeInput(q.Get("username"))
	if username == "" {
		return gridParams{}, fmt.Errorf("username is required")
	}

	budget := defaultBudget
	if v := strings.TrimSpace(q.Get("budget")); v != "" {
		budget, err = parseIntParam(v, "budget", minBudget, maxBudget)
		if err != nil {
			return gridParams{}, err
		}
	}

	return gridParams{
		Year:     year,
		Username: username,
		Hash:     q.Get("hash"),
		Budget:   budget,
	}, nil
}

func parseDetailParams(r *http.Request, defaultBudget int) (detailParams, error) {
	gp, err := parseGridParams(r, defaultBudget)
	if err != nil {
		return detailParams{}, err
	}

	q := r.URL.Query()
	spent, err := parseIntParam(q.Get("spent"), "spent", 0, maxBudget)
	if err != nil {
		return detailParams{}, err
	}
	// A fully extended period can cover most of the remaining year.
	daysOff, err := parseIntParam(q.Get("off"), "off", 1, 400)
	if err != nil {
		return detailParams{}, err
	}

	return detailParams{gridParams: gp, Spent: spent, DaysOff: daysOff}, nil
}

func parseIntParam(raw, name string, min, max int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': must be a number", name, raw)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("invalid %s %d: must be between %d and %d", name, v, min, max)
	}
	return v, nil
}

// parseISODateList parses a comma separated list of YYYY-MM-DD dates.
func parseISODateList(raw string) (map[string]bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	days := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		day := strings.TrimSpace(part)
		if day == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", day); err != nil {
			return nil, fmt.Errorf("invalid vacation day '%s': must be YYYY-MM-DD", day)
		}
		days[day] = true
	}
	return days, nil
}

// sanitizeInput strips control runes so usernames are safe to echo into
// logs and templates.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
