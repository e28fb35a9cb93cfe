package core

import "time"

// Grid is the dense histogram of achievable vacation periods. Cells[off-1][spent]
// counts distinct periods taking exactly off consecutive days while spending
// exactly spent working days. Rows cover days off 1..MaxDaysOff, columns cover
// spend 0..MaxBudget.
type Grid struct {
	Cells      [][]int
	MaxDaysOff int
	MaxBudget  int
}

// BuildGrid enumerates every vacation period for the year within maxBudget and
// folds the counts into a dense grid. A year that is already over yields the
// zero grid. The grid is rebuilt in full on every call; callers own caching.
func BuildGrid(year, maxBudget int, dayTypes map[string]Classification, today time.Time) Grid {
	tl := BuildTimeline(year, dayTypes, today)
	if len(tl.Days) == 0 {
		return Grid{}
	}

	counts := make(map[[2]int]int)
	maxDaysOff := 0
	for p := range tl.Periods(maxBudget) {
		counts[[2]int{p.Spent, p.DaysOff}]++
		if p.DaysOff > maxDaysOff {
			maxDaysOff = p.DaysOff
		}
	}

	cells := make([][]int, 0, maxDaysOff)
	for off := 1; off <= maxDaysOff; off++ {
		row := make([]int, maxBudget+1)
		for spent := 0; spent <= maxBudget; spent++ {
			row[spent] = counts[[2]int{spent, off}]
		}
		cells = append(cells, row)
	}

	return Grid{Cells: cells, MaxDaysOff: maxDaysOff, MaxBudget: maxBudget}
}
