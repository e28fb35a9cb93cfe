package core

import "time"

const (
	// contextDays is how many days around a period are included for display.
	contextDays = 3
	// maxCellMatches caps the number of periods returned for one cell.
	maxCellMatches = 10
)

type (
	// PeriodDay is one display day of a matched period, including context
	// days around the extended window. Opacity is 1.0 inside the period and
	// fades from 0.5 toward 0.25 over the context days.
	PeriodDay struct {
		Date      time.Time
		IsWorking bool
		IsWeekend bool
		Class     Classification
		InPeriod  bool
		Opacity   float64
	}

	// PeriodMatch is one concrete period realizing a requested grid cell.
	PeriodMatch struct {
		Start time.Time
		End   time.Time
		Days  []PeriodDay
	}
)

// FindPeriodsForCell returns up to 10 periods spending exactly targetSpent
// working days for exactly targetOff days off, each with up to 3 context days
// on either side. The enumeration runs with budget = targetSpent, which is
// sufficient for exact matches and prunes harder than the full grid pass.
// An unachievable cell yields an empty result, not an error.
func FindPeriodsForCell(year, targetSpent, targetOff int, dayTypes map[string]Classification, today time.Time) []PeriodMatch {
	tl := BuildTimeline(year, dayTypes, today)
	if len(tl.Days) == 0 {
		return nil
	}

	var matches []PeriodMatch
	for p := range tl.Periods(targetSpent) {
		if p.Spent != targetSpent || p.DaysOff != targetOff {
			continue
		}

		displayStart := max(0, p.ExtStart-contextDays)
		displayEnd := min(len(tl.Days)-1, p.ExtEnd+contextDays)

		days := make([]PeriodDay, 0, displayEnd-displayStart+1)
		for i := displayStart; i <= displayEnd; i++ {
			d := tl.Days[i]
			inPeriod := i >= p.ExtStart && i <= p.ExtEnd
			opacity := 1.0
			if !inPeriod {
				dist := p.ExtStart - i
				if i > p.ExtEnd {
					dist = i - p.ExtEnd
				}
				opacity = 0.25 + 0.25*float64(contextDays-dist)/float64(contextDays)
			}
			days = append(days, PeriodDay{
				Date:      d.Date,
				IsWorking: d.IsWorking,
				IsWeekend: d.IsWeekend,
				Class:     d.Class,
				InPeriod:  inPeriod,
				Opacity:   opacity,
			})
		}

		matches = append(matches, PeriodMatch{
			Start: tl.Days[p.ExtStart].Date,
			End:   tl.Days[p.ExtEnd].Date,
			Days:  days,
		})
		if len(matches) >= maxCellMatches {
			break
		}
	}

	return matches
}
