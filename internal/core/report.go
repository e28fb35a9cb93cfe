package core

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDailyHours is the target working time per day when the caller does
// not override it.
const DefaultDailyHours = 7.5

// Issue summary prefixes with special worklog handling.
const (
	annualLeavePrefix = "Letni dopust"
	sickLeavePrefix   = "Bolniška odsotnost"
)

type (
	// WorklogEntry is one timesheet entry folded into a month report. Date is
	// the ISO day the work was logged on, Seconds the raw logged duration and
	// Summary the issue summary the entry was booked against.
	WorklogEntry struct {
		Date    string
		Seconds float64
		Summary string
	}

	// MonthOptions parameterizes a month report. One options value covers
	// what used to be separate calendar variants: extra vacation days the
	// timesheet does not know about, a custom daily target, and a
	// started-working cutoff before which no hours are expected.
	MonthOptions struct {
		ExtraVacationDays map[string]bool
		DailyHours        float64
		StartedWorking    string
	}

	// MonthReport is the fully aggregated work-hours picture of one month
	// for one user.
	MonthReport struct {
		Year  int
		Month int
		Opts  MonthOptions

		Worked        map[string]float64 // seconds worked per ISO date
		LeaveDays     map[string]bool
		SickDays      map[string]bool
		DayTypes      map[string]Classification
		RunningTotals map[string]float64 // cumulative hour diff per ISO date

		ElapsedWorkingDays   int
		AvgHours             float64
		AccumulatedDiff      float64
		RemainingWorkingDays int
		RequiredPerDay       float64
		PastMonth            bool
		CurrentMonth         bool
	}
)

// BuildMonthReport folds worklogs and day classifications into a MonthReport.
// today decides which stats window applies (past, current or future month)
// and is never read from the clock here.
func BuildMonthReport(year, month int, logs []WorklogEntry, dayTypes map[string]Classification, opts MonthOptions, today time.Time) MonthReport {
	if opts.DailyHours <= 0 {
		opts.DailyHours = DefaultDailyHours
	}

	r := MonthReport{
		Year:          year,
		Month:         month,
		Opts:          opts,
		Worked:        make(map[string]float64),
		LeaveDays:     make(map[string]bool),
		SickDays:      make(map[string]bool),
		DayTypes:      dayTypes,
		RunningTotals: make(map[string]float64),
	}

	for _, wl := range logs {
		if wl.Date == "" {
			continue
		}
		seconds := wl.Seconds
		switch {
		case strings.HasPrefix(wl.Summary, annualLeavePrefix):
			seconds = opts.DailyHours * 3600
			r.LeaveDays[wl.Date] = true
		case strings.HasPrefix(wl.Summary, sickLeavePrefix):
			// Every 8 hours of sick leave forfeits half an hour.
			seconds = wl.Seconds - (wl.Seconds/8)*0.5
			r.SickDays[wl.Date] = true
		}
		r.Worked[wl.Date] += seconds
	}

	monthPrefix := fmt.Sprintf("%04d-%02d", year, month)
	for d := range opts.ExtraVacationDays {
		if strings.HasPrefix(d, monthPrefix) {
			r.Worked[d] = opts.DailyHours * 3600
			r.LeaveDays[d] = true
		}
	}

	days := daysInMonth(year, month)
	running := 0.0
	for day := 1; day <= days; day++ {
		d := isoDate(year, month, day)
		running += r.Worked[d]/3600 - r.ExpectedHours(d)
		r.RunningTotals[d] = running
	}
	r.AccumulatedDiff = running

	r.computeStats(days, today)
	return r
}

func (r *MonthReport) computeStats(days int, today time.Time) {
	targetMonth := time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC)
	currentMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	r.PastMonth = targetMonth.Before(currentMonth)
	r.CurrentMonth = targetMonth.Equal(currentMonth)

	totalWorked := 0.0
	for _, seconds := range r.Worked {
		totalWorked += seconds / 3600
	}

	lastDayForAvg := 0
	switch {
	case r.PastMonth:
		lastDayForAvg = days
	case r.CurrentMonth:
		lastDayForAvg = today.Day()
	}

	for day := 1; day <= lastDayForAvg; day++ {
		if r.EffectiveWorkingDay(isoDate(r.Year, r.Month, day)) {
			r.ElapsedWorkingDays++
		}
	}
	if r.ElapsedWorkingDays > 0 {
		r.AvgHours = totalWorked / float64(r.ElapsedWorkingDays)
	}

	if !r.PastMonth {
		firstRemaining := 1
		if r.CurrentMonth {
			firstRemaining = today.Day()
		}
		for day := firstRemaining; day <= days; day++ {
			if r.EffectiveWorkingDay(isoDate(r.Year, r.Month, day)) {
				r.RemainingWorkingDays++
			}
		}
	}

	switch {
	case r.RemainingWorkingDays > 0:
		r.RequiredPerDay = -r.AccumulatedDiff / float64(r.RemainingWorkingDays)
	case r.AccumulatedDiff < 0:
		r.RequiredPerDay = -r.AccumulatedDiff
	}
}

// ClassOf returns the classification used for goal computation and cell
// coloring. Dates missing from the lookup count as working days here.
func (r MonthReport) ClassOf(date string) Classification {
	if c, ok := r.DayTypes[date]; ok {
		return c
	}
	return WorkingDay
}

// ExpectedHours is the number of hours due on a date: the daily target on
// working days at or after the started-working cutoff, zero otherwise.
func (r MonthReport) ExpectedHours(date string) float64 {
	if r.beforeStart(date) {
		return 0
	}
	if r.ClassOf(date) == WorkingDay {
		return r.Opts.DailyHours
	}
	return 0
}

// EffectiveWorkingDay reports whether a date counts toward elapsed and
// remaining working days: at or after the cutoff, not spent on leave, and
// explicitly classified as a working day. Dates without a classification are
// not counted.
func (r MonthReport) EffectiveWorkingDay(date string) bool {
	if r.beforeStart(date) || r.LeaveDays[date] {
		return false
	}
	return r.DayTypes[date] == WorkingDay
}

// HoursWorked returns the worked hours recorded for a date.
func (r MonthReport) HoursWorked(date string) float64 {
	return r.Worked[date] / 3600
}

func (r MonthReport) beforeStart(date string) bool {
	return r.Opts.StartedWorking != "" && date < r.Opts.StartedWorking
}

func isoDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
