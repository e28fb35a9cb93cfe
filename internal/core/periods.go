package core

import "iter"

// Period is one candidate vacation window. ExtStart/ExtEnd are timeline
// indices of the window after zero-cost extension; Spent is the number of
// working days consumed and DaysOff the total calendar length.
type Period struct {
	Spent    int
	DaysOff  int
	ExtStart int
	ExtEnd   int
}

// Periods returns a lazy sequence of distinct vacation periods whose spend
// does not exceed maxBudget. Re-ranging the sequence reproduces the same
// periods in the same order.
//
// For every start position before YearEndIndex the end position advances,
// accumulating cost, until the budget is exceeded (cost never decreases, so
// the scan for that start can stop there). Each kept window is extended
// outward over adjacent zero-cost days, merging neighboring weekends and
// holidays at no extra spend. Extended bounds are deduplicated across the
// whole enumeration; the first window to reach a pair of bounds wins and
// later windows reaching the same bounds are dropped.
func (t Timeline) Periods(maxBudget int) iter.Seq[Period] {
	return func(yield func(Period) bool) {
		seen := make(map[[2]int]struct{})

		for start := 0; start < t.YearEndIndex; start++ {
			spent := 0

			for end := start; end < t.YearEndIndex; end++ {
				spent += t.Days[end].Cost
				if spent > maxBudget {
					break
				}

				extStart := start
				for extStart > 0 && t.Days[extStart-1].Cost == 0 {
					extStart--
				}
				extEnd := end
				for extEnd < len(t.Days)-1 && t.Days[extEnd+1].Cost == 0 {
					extEnd++
				}

				key := [2]int{extStart, extEnd}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				p := Period{
					Spent:    spent,
					DaysOff:  extEnd - extStart + 1,
					ExtStart: extStart,
					ExtEnd:   extEnd,
				}
				if !yield(p) {
					return
				}
			}
		}
	}
}
