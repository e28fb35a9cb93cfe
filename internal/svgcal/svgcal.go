// Package svgcal renders month reports as standalone SVG documents: a title,
// a stats card, a per-day bar graph and a wall-calendar grid with one
// annotated cell per day.
package svgcal

import (
	"fmt"
	"io"
	"math"
	"time"

	svg "github.com/ajstarks/svgo/float"

	"dopust/internal/core"
)

const (
	cellWidth  = 80.0
	cellHeight = 65.0
	padding    = 8.0

	canvasWidth  = cellWidth*7 + padding*2
	canvasHeight = cellHeight*6 + padding*2 + 60 + 100

	statsY     = padding + 35
	cardHeight = 85.0

	maxGraphHours = 10.0
	gridSteps     = 5
)

// cellFill maps a day classification to its calendar cell background.
var cellFill = map[core.Classification]string{
	core.NonWorkingDay:           "#E0E0E0",
	core.WorkingDay:              "white",
	core.Holiday:                 "#E3F2FD",
	core.HolidayAndNonWorkingDay: "#E1E9EE",
}

// Render writes the work-hours calendar for one month report as a complete
// SVG document. Text content is XML-escaped by the SVG writer, so the
// username may be used verbatim.
func Render(w io.Writer, username string, r core.MonthReport) {
	canvas := svg.New(w)
	canvas.Start(canvasWidth, canvasHeight, `font-family="Arial"`)

	title := fmt.Sprintf("Work Hours Calendar - %s %d - %s", time.Month(r.Month), r.Year, username)
	canvas.Text(padding+cellWidth*7/2, padding+16, title, "font-size:18px;text-anchor:middle;font-weight:bold")

	drawStats(canvas, r)
	drawBarGraph(canvas, r)
	drawCalendar(canvas, r)

	canvas.End()
}

func drawStats(canvas *svg.SVG, r core.MonthReport) {
	canvas.Rect(padding, statsY, cellWidth*4, cardHeight+padding, "fill:white;stroke:black")

	labels := []string{"Average hours worked per day", "Accumulated difference"}
	values := []string{
		fmt.Sprintf("(%d) %s", r.ElapsedWorkingDays, FormatTime(r.AvgHours, false)),
		FormatTime(r.AccumulatedDiff, true),
	}
	if !r.PastMonth {
		labels = append(labels, "Working days remaining", "Required hours per remaining work day")
		values = append(values, fmt.Sprintf("%d", r.RemainingWorkingDays), FormatTime(r.RequiredPerDay, false))
	}

	valueX := padding + cellWidth*4 - 12
	for i := range labels {
		y := statsY + 25 + float64(i)*18
		canvas.Text(padding+16, y, labels[i], "font-size:12px")
		canvas.Text(valueX, y, values[i], "font-size:12px;text-anchor:end")
	}
}

func drawBarGraph(canvas *svg.SVG, r core.MonthReport) {
	const (
		graphX      = 2*padding + cellWidth*4 + padding*2
		graphY      = statsY
		graphWidth  = cellWidth*3 - padding*3
		graphHeight = cardHeight + padding
	)

	canvas.Rect(graphX, graphY, graphWidth, graphHeight, "fill:white;stroke:black")

	for i := 0; i <= gridSteps; i++ {
		y := graphY + graphHeight - float64(i)*graphHeight/gridSteps
		hours := float64(i) * maxGraphHours / gridSteps
		canvas.Line(graphX, y, graphX+graphWidth, y, "stroke:#CCCCCC;stroke-width:0.5")
		canvas.Text(graphX-2, y, fmt.Sprintf("%dh", int(hours)), "font-size:8px;text-anchor:end")
	}

	targetY := graphY + graphHeight - r.Opts.DailyHours/maxGraphHours*graphHeight
	canvas.Line(graphX, targetY, graphX+graphWidth, targetY, "stroke:#1976D2;stroke-width:1")

	days := daysIn(r.Year, r.Month)
	barSpacing := 1.0
	barWidth := math.Max(1, (graphWidth-20-float64(days-1)*barSpacing)/float64(days))

	for day := 1; day <= days; day++ {
		date := isoDate(r.Year, r.Month, day)
		hours := r.HoursWorked(date)
		barX := graphX + 10 + float64(day-1)*(barWidth+barSpacing)

		visible := math.Min(hours, maxGraphHours)
		barHeight := visible / maxGraphHours * graphHeight
		canvas.Rect(barX, graphY+graphHeight-barHeight, barWidth, barHeight, "fill:"+barColor(r, date, hours))

		if day == 1 || day == days || day%5 == 0 {
			canvas.Text(barX+barWidth/2, graphY+graphHeight+12, fmt.Sprintf("%d", day), "font-size:8px;text-anchor:middle")
		}
	}
}

// barColor picks the graph bar fill for one day: pre-start days are greyed
// out, leave and sick days keep their own colors, everything else is banded
// by distance from the daily target. Short bars on days that are not working
// days to begin with are shown as on target rather than short.
func barColor(r core.MonthReport, date string, hours float64) string {
	switch {
	case preStart(r, date):
		return "#CCCCCC"
	case r.LeaveDays[date]:
		return "#0D47A1"
	case r.SickDays[date]:
		return "#9575CD"
	}

	lowerMargin := r.Opts.DailyHours - 5.0/60
	upperMargin := r.Opts.DailyHours + 5.0/60

	var color string
	switch {
	case hours == 0:
		color = "#CCCCCC"
	case hours < 4:
		color = "#C62828"
	case hours < lowerMargin:
		color = "#EF6C00"
	case hours < upperMargin:
		color = "#1976D2"
	case hours < maxGraphHours:
		color = "#2E7D32"
	default:
		color = "#9C27B0"
	}

	switch r.DayTypes[date] {
	case core.Holiday, core.HolidayAndNonWorkingDay, core.NonWorkingDay:
		if hours > 0 && (color == "#C62828" || color == "#EF6C00") {
			color = "#1976D2"
		}
	}
	return color
}

func drawCalendar(canvas *svg.SVG, r core.MonthReport) {
	startY := statsY + cardHeight + padding + 30

	for i, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		x := padding + float64(i)*cellWidth
		canvas.Text(x+cellWidth/2, startY, name, "font-size:14px;text-anchor:middle")
	}

	for row, week := range monthWeeks(r.Year, r.Month) {
		for col, day := range week {
			x := padding + float64(col)*cellWidth
			y := startY + 10 + float64(row)*cellHeight
			if day == 0 {
				canvas.Rect(x, y, cellWidth, cellHeight, "fill:white;stroke:black")
				continue
			}
			drawDayCell(canvas, r, x, y, day)
		}
	}
}

func drawDayCell(canvas *svg.SVG, r core.MonthReport, x, y float64, day int) {
	date := isoDate(r.Year, r.Month, day)

	fill := cellFill[r.ClassOf(date)]
	if preStart(r, date) {
		fill = "#E0E0E0"
	}
	canvas.Rect(x, y, cellWidth, cellHeight, fmt.Sprintf("fill:%s;stroke:black", fill))

	hours := r.HoursWorked(date)
	overtime := math.Max(0, hours-r.ExpectedHours(date))
	// One star per half hour over target.
	if stars := int(overtime * 2); stars > 0 {
		drawStars(canvas, x, y, stars)
	}

	switch {
	case r.SickDays[date]:
		drawSickIcon(canvas, x, y-4)
	case r.LeaveDays[date]:
		drawLeaveIcon(canvas, x, y-4)
	}

	canvas.Text(x+8, y+16, fmt.Sprintf("%d", day), "font-size:12px")

	hoursColor := "black"
	switch {
	case r.LeaveDays[date]:
		hoursColor = "#0D47A1"
	case r.SickDays[date]:
		hoursColor = "#9575CD"
	}
	canvas.Text(x+8, y+32, FormatTime(hours, false), "font-size:10px;fill:"+hoursColor)

	diff := hours - r.ExpectedHours(date)
	canvas.Text(x+8, y+44, FormatTime(diff, true), "font-size:10px;fill:"+diffColor(diff))

	canvas.Line(x+8, y+48, x+40, y+48, "stroke:#666666;stroke-width:0.5")

	if total, ok := r.RunningTotals[date]; ok {
		canvas.Text(x+8, y+58, FormatTime(total, true), "font-size:10px;fill:"+diffColor(total))
	}

	if r.EffectiveWorkingDay(date) {
		canvas.Text(x+cellWidth-4, y+cellHeight-4, "WD", "font-size:8px;font-weight:bold;fill:#666666;text-anchor:end")
	}
}

func diffColor(v float64) string {
	if v >= 0 {
		return "#2E7D32"
	}
	return "#C62828"
}

// FormatTime renders a fractional hour count as "7h 30m", truncating to
// whole minutes. Negative values get a leading minus, positive ones a plus
// when showPlus is set.
func FormatTime(hours float64, showPlus bool) string {
	sign := ""
	switch {
	case hours < 0:
		sign = "-"
	case showPlus && hours > 0:
		sign = "+"
	}
	totalMinutes := int(math.Abs(hours) * 60)
	return fmt.Sprintf("%s%dh %dm", sign, totalMinutes/60, totalMinutes%60)
}

func preStart(r core.MonthReport, date string) bool {
	return r.Opts.StartedWorking != "" && date < r.Opts.StartedWorking
}

// monthWeeks lays the days of a month out in Monday-first weeks, zero-padded
// at both ends like a wall calendar.
func monthWeeks(year, month int) [][7]int {
	offset := (int(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Weekday()) + 6) % 7
	days := daysIn(year, month)

	var weeks [][7]int
	var week [7]int
	col := offset
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

func isoDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
