package core

import "time"

const (
	WorkingDay              Classification = "WORKING_DAY"
	NonWorkingDay           Classification = "NON_WORKING_DAY"
	Holiday                 Classification = "HOLIDAY"
	HolidayAndNonWorkingDay Classification = "HOLIDAY_AND_NON_WORKING_DAY"
)

// Classification is the per-day label describing work expectation for a date.
// The string values match the timesheet API's day types verbatim.
type Classification string

// IsValid returns true if the classification is one of the four known values.
func (c Classification) IsValid() bool {
	switch c {
	case WorkingDay, NonWorkingDay, Holiday, HolidayAndNonWorkingDay:
		return true
	default:
		return false
	}
}

// Cost returns the vacation budget consumed by taking this day off:
// 1 for a working day, 0 for everything else.
func (c Classification) Cost() int {
	if c == WorkingDay {
		return 1
	}
	return 0
}

// DefaultClassification classifies a date with no external information:
// Saturday and Sunday are non-working, every other day is a working day.
func DefaultClassification(d time.Time) Classification {
	if isWeekend(d) {
		return NonWorkingDay
	}
	return WorkingDay
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISODate formats a date as the YYYY-MM-DD key used by classification lookups.
func ISODate(d time.Time) string {
	return d.Format("2006-01-02")
}
