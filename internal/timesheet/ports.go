package timesheet

import (
	"context"

	"dopust/internal/core"
)

// Ports for outbound timesheet and holiday providers.
type (
	// WorklogReader lists the worklogs a user booked between two ISO dates,
	// both inclusive.
	WorklogReader interface {
		ListWorklogs(ctx context.Context, username, from, to string) ([]core.WorklogEntry, error)
	}

	// DayTypeReader returns day classifications keyed by ISO date for a
	// date range, both bounds inclusive.
	DayTypeReader interface {
		ListDayTypes(ctx context.Context, username, from, to string) (map[string]core.Classification, error)
	}

	// SelfProber verifies the upstream connection and credentials and
	// returns the authenticated account name.
	SelfProber interface {
		Myself(ctx context.Context) (string, error)
	}

	// HolidaySource lists the public holidays of one year as a map from
	// ISO date to holiday name.
	HolidaySource interface {
		Holidays(ctx context.Context, year int) (map[string]string, error)
	}
)
