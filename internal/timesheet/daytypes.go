package timesheet

import (
	"context"
	"fmt"
	"time"

	"dopust/internal/core"
)

// HolidayDayTypes adapts a HolidaySource into a DayTypeReader. Weekday
// holidays come back as HOLIDAY, weekend holidays as
// HOLIDAY_AND_NON_WORKING_DAY, plain weekends as NON_WORKING_DAY and all
// remaining days as WORKING_DAY. The username is ignored because public
// holidays apply to everyone.
type HolidayDayTypes struct {
	Source HolidaySource
}

var _ DayTypeReader = HolidayDayTypes{}

func (h HolidayDayTypes) ListDayTypes(ctx context.Context, _ string, from, to string) (map[string]core.Classification, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, fmt.Errorf("parse from date %q: %w", from, err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, fmt.Errorf("parse to date %q: %w", to, err)
	}

	holidays := make(map[string]string)
	for year := start.Year(); year <= end.Year(); year++ {
		hs, err := h.Source.Holidays(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("holidays for %d: %w", year, err)
		}
		for date, name := range hs {
			holidays[date] = name
		}
	}

	types := make(map[string]core.Classification)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := core.ISODate(d)
		_, holiday := holidays[date]
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		switch {
		case holiday && weekend:
			types[date] = core.HolidayAndNonWorkingDay
		case holiday:
			types[date] = core.Holiday
		case weekend:
			types[date] = core.NonWorkingDay
		default:
			types[date] = core.WorkingDay
		}
	}
	return types, nil
}
