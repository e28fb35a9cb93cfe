package googlecal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcal "google.golang.org/api/calendar/v3"
	goption "google.golang.org/api/option"

	ports "dopust/internal/timesheet"
)

// Feed reads public holidays from a Google holiday calendar, for example
// en.slovenian#holiday@group.v.calendar.google.com. Holiday calendars are
// public, so a plain API key is enough.
type Feed struct {
	svc        *gcal.Service
	calendarID string
}

// Ensure interface conformance
var _ ports.HolidaySource = (*Feed)(nil)

// NewFeed creates a holiday feed client for the given calendar.
func NewFeed(ctx context.Context, apiKey, calendarID string) (*Feed, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Google holidays API key")
	}
	if strings.TrimSpace(calendarID) == "" {
		return nil, errors.New("missing Google holidays calendar ID")
	}

	svc, err := gcal.NewService(ctx, goption.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Feed{svc: svc, calendarID: calendarID}, nil
}

// Holidays lists the holidays of a year keyed by ISO date.
func (f *Feed) Holidays(ctx context.Context, year int) (map[string]string, error) {
	timeMin := fmt.Sprintf("%d-01-01T00:00:00Z", year)
	timeMax := fmt.Sprintf("%d-01-01T00:00:00Z", year+1)

	out := make(map[string]string)
	pageToken := ""
	for {
		call := f.svc.Events.List(f.calendarID).
			TimeMin(timeMin).
			TimeMax(timeMax).
			SingleEvents(true).
			MaxResults(250).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list holiday events for %d: %w", year, err)
		}

		for _, item := range events.Items {
			// All-day holiday events carry a bare date, not a timestamp.
			if item.Start == nil || item.Start.Date == "" {
				continue
			}
			out[item.Start.Date] = item.Summary
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}
