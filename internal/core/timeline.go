package core

import "time"

type (
	// Day is one record of the year timeline.
	Day struct {
		Date      time.Time
		Cost      int
		Class     Classification
		IsWorking bool
		IsWeekend bool
	}

	// Timeline is the ordered day sequence for the remaining part of a year,
	// plus a lookahead buffer into early January of the next year so periods
	// near year end can extend over adjacent free days. YearEndIndex is the
	// first index whose date falls after Dec 31; only indices before it are
	// valid period start positions.
	Timeline struct {
		Days         []Day
		YearEndIndex int
	}
)

// lookaheadEnd is the last buffered date: Jan 10 of the following year.
const lookaheadDays = 10

// BuildTimeline constructs the timeline for year. Days already in the past are
// never offerable, so the sequence starts at max(today+1, Jan 1). Each day is
// classified from dayTypes, falling back to the weekday default for missing
// dates. today must be supplied by the caller; the result is a pure function
// of the three inputs.
func BuildTimeline(year int, dayTypes map[string]Classification, today time.Time) Timeline {
	tomorrow := dateOnly(today).AddDate(0, 0, 1)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if tomorrow.After(start) {
		start = tomorrow
	}
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if start.After(yearEnd) {
		return Timeline{}
	}

	extendedEnd := time.Date(year+1, time.January, lookaheadDays, 0, 0, 0, 0, time.UTC)
	days := make([]Day, 0, int(extendedEnd.Sub(start).Hours()/24)+1)
	yearEndIndex := 0
	for current := start; !current.After(extendedEnd); current = current.AddDate(0, 0, 1) {
		class, ok := dayTypes[ISODate(current)]
		if !ok {
			class = DefaultClassification(current)
		}
		days = append(days, Day{
			Date:      current,
			Cost:      class.Cost(),
			Class:     class,
			IsWorking: class == WorkingDay,
			IsWeekend: isWeekend(current),
		})
		if !current.After(yearEnd) {
			yearEndIndex++
		}
	}

	return Timeline{Days: days, YearEndIndex: yearEndIndex}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
