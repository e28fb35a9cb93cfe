package core

import (
	"reflect"
	"testing"
)

// collectPeriods drains the iterator into a slice.
func collectPeriods(tl Timeline, maxBudget int) []Period {
	var out []Period
	for p := range tl.Periods(maxBudget) {
		out = append(out, p)
	}
	return out
}

func TestPeriods_IsolatedWeekends(t *testing.T) {
	// No holidays, budget 0: every isolated weekend before year end is one
	// spent=0, daysOff=2 period.
	tl := BuildTimeline(2026, nil, utcDate(2026, 12, 14))

	got := collectPeriods(tl, 0)
	want := []Period{
		{Spent: 0, DaysOff: 2, ExtStart: 4, ExtEnd: 5},   // Dec 19-20
		{Spent: 0, DaysOff: 2, ExtStart: 11, ExtEnd: 12}, // Dec 26-27
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Periods(0) = %+v, want %+v", got, want)
	}
}

func TestPeriods_HolidayMergesWithWeekend(t *testing.T) {
	// A Friday holiday glued to the weekend yields one merged 3-day period,
	// never the Friday-only or weekend-only windows at the same bounds.
	dayTypes := map[string]Classification{"2026-12-18": Holiday}
	tl := BuildTimeline(2026, dayTypes, utcDate(2026, 12, 14))

	got := collectPeriods(tl, 0)
	want := []Period{
		{Spent: 0, DaysOff: 3, ExtStart: 3, ExtEnd: 5},   // Dec 18-20
		{Spent: 0, DaysOff: 2, ExtStart: 11, ExtEnd: 12}, // Dec 26-27
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Periods(0) = %+v, want %+v", got, want)
	}
}

func TestPeriods_FirstWinsDedup(t *testing.T) {
	// Several inner windows reach the same extended bounds (the merged
	// Fri-Sun block is reachable from the Friday, Saturday and Sunday start
	// positions); only the first one is emitted.
	dayTypes := map[string]Classification{"2026-12-18": Holiday}
	tl := BuildTimeline(2026, dayTypes, utcDate(2026, 12, 14))

	seen := make(map[[2]int]int)
	for p := range tl.Periods(2) {
		seen[[2]int{p.ExtStart, p.ExtEnd}]++
	}
	for bounds, n := range seen {
		if n > 1 {
			t.Errorf("bounds %v emitted %d times, want 1", bounds, n)
		}
	}
}

func TestPeriods_BudgetBoundsSpend(t *testing.T) {
	tl := BuildTimeline(2026, map[string]Classification{"2026-12-25": Holiday}, utcDate(2026, 12, 14))

	for _, budget := range []int{0, 1, 2, 5} {
		for p := range tl.Periods(budget) {
			if p.Spent < 0 || p.Spent > budget {
				t.Errorf("budget %d: Spent = %d out of range", budget, p.Spent)
			}
			if p.ExtEnd < p.ExtStart {
				t.Errorf("budget %d: ExtEnd %d < ExtStart %d", budget, p.ExtEnd, p.ExtStart)
			}
			if p.DaysOff != p.ExtEnd-p.ExtStart+1 {
				t.Errorf("budget %d: DaysOff = %d, want %d", budget, p.DaysOff, p.ExtEnd-p.ExtStart+1)
			}
			if p.DaysOff < 1 {
				t.Errorf("budget %d: DaysOff = %d < 1", budget, p.DaysOff)
			}
		}
	}
}

func TestPeriods_RestartReproducesSequence(t *testing.T) {
	dayTypes := map[string]Classification{"2026-12-18": Holiday, "2026-12-25": Holiday}
	tl := BuildTimeline(2026, dayTypes, utcDate(2026, 12, 14))

	first := collectPeriods(tl, 3)
	second := collectPeriods(tl, 3)
	if len(first) == 0 {
		t.Fatal("expected periods, got none")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second run differs from first:\n%+v\n%+v", second, first)
	}
}

func TestPeriods_EarlyBreakStopsIteration(t *testing.T) {
	tl := BuildTimeline(2026, nil, utcDate(2026, 12, 14))

	count := 0
	for range tl.Periods(2) {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("consumed %d periods, want 3", count)
	}
}

func TestPeriods_StartsStayInsideYear(t *testing.T) {
	// The lookahead buffer may only be reached by extension: no period may
	// begin after Dec 31.
	tl := BuildTimeline(2026, nil, utcDate(2026, 12, 14))

	for p := range tl.Periods(5) {
		if p.ExtStart >= tl.YearEndIndex {
			t.Errorf("period %+v starts in the lookahead buffer", p)
		}
	}
}
