package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// holidayCluster marks the run between Christmas and New Year as holidays, so
// spending Wed Dec 23 and Thu Dec 24 buys the whole Dec 23 - Dec 31 stretch.
func holidayCluster() map[string]Classification {
	return map[string]Classification{
		"2026-12-25": Holiday,
		"2026-12-28": Holiday,
		"2026-12-29": Holiday,
		"2026-12-30": Holiday,
		"2026-12-31": Holiday,
	}
}

func TestFindPeriodsForCell_LongCluster(t *testing.T) {
	matches := FindPeriodsForCell(2026, 2, 9, holidayCluster(), utcDate(2026, 12, 14))

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if !m.Start.Equal(utcDate(2026, 12, 23)) {
		t.Errorf("Start = %v, want 2026-12-23", m.Start)
	}
	if !m.End.Equal(utcDate(2026, 12, 31)) {
		t.Errorf("End = %v, want 2026-12-31", m.End)
	}
	if length := int(m.End.Sub(m.Start).Hours()/24) + 1; length != 9 {
		t.Errorf("period length = %d days, want 9", length)
	}
	// 9 period days plus 3 context days on each side.
	if len(m.Days) != 15 {
		t.Errorf("len(Days) = %d, want 15", len(m.Days))
	}
}

func TestFindPeriodsForCell_OpacityFade(t *testing.T) {
	matches := FindPeriodsForCell(2026, 2, 9, holidayCluster(), utcDate(2026, 12, 14))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	days := matches[0].Days

	wantOpacity := []float64{
		0.25, 0.25 + 0.25*1.0/3.0, 0.25 + 0.25*2.0/3.0, // context before
		1, 1, 1, 1, 1, 1, 1, 1, 1, // the period itself
		0.25 + 0.25*2.0/3.0, 0.25 + 0.25*1.0/3.0, 0.25, // context after
	}
	if len(days) != len(wantOpacity) {
		t.Fatalf("len(Days) = %d, want %d", len(days), len(wantOpacity))
	}
	for i, d := range days {
		if !almostEqual(d.Opacity, wantOpacity[i]) {
			t.Errorf("Days[%d].Opacity = %v, want %v", i, d.Opacity, wantOpacity[i])
		}
		if d.InPeriod != (wantOpacity[i] == 1) {
			t.Errorf("Days[%d].InPeriod = %v inconsistent with opacity %v", i, d.InPeriod, d.Opacity)
		}
	}
}

func TestFindPeriodsForCell_ContextClampedAtTimelineEdge(t *testing.T) {
	// The first weekend sits two days from the timeline start, so the
	// leading context is clamped to those two days.
	matches := FindPeriodsForCell(2026, 0, 2, nil, utcDate(2026, 12, 16))
	if len(matches) == 0 {
		t.Fatal("expected at least one weekend match")
	}

	m := matches[0]
	if !m.Start.Equal(utcDate(2026, 12, 19)) {
		t.Fatalf("Start = %v, want 2026-12-19", m.Start)
	}
	if len(m.Days) != 7 {
		t.Errorf("len(Days) = %d, want 7 (2 clamped context + 2 period + 3 context)", len(m.Days))
	}
}

func TestFindPeriodsForCell_UnachievableCell(t *testing.T) {
	tests := []struct {
		name       string
		spent, off int
	}{
		{"spend beyond remaining working days", 40, 5},
		{"off longer than any window", 2, 30},
		{"mismatched pair", 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := FindPeriodsForCell(2026, tt.spent, tt.off, nil, utcDate(2026, 12, 14))
			if len(matches) != 0 {
				t.Errorf("got %d matches, want none", len(matches))
			}
		})
	}
}

func TestFindPeriodsForCell_EmptyYear(t *testing.T) {
	matches := FindPeriodsForCell(2026, 0, 2, nil, utcDate(2026, 12, 31))
	if matches != nil {
		t.Errorf("got %v, want nil for a finished year", matches)
	}
}

func TestFindPeriodsForCell_CapsAtTen(t *testing.T) {
	// A full year of plain weekends has far more than ten (0, 2) periods.
	matches := FindPeriodsForCell(2026, 0, 2, nil, utcDate(2025, 12, 14))
	if len(matches) != 10 {
		t.Errorf("got %d matches, want the cap of 10", len(matches))
	}
}
