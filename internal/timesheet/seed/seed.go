package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"

	ports "dopust/internal/timesheet"
)

//go:embed holidays.toml
var holidaysTOML []byte

type calendarFile struct {
	Fixed   []fixedHoliday   `toml:"fixed"`
	Movable []movableHoliday `toml:"movable"`
}

type fixedHoliday struct {
	Month int    `toml:"month"`
	Day   int    `toml:"day"`
	Name  string `toml:"name"`
}

type movableHoliday struct {
	Date string `toml:"date"`
	Name string `toml:"name"`
}

// Calendar serves the Slovenian holiday calendar embedded in the binary.
// It is the fallback of last resort when neither Tempo nor the Google feed
// is reachable, so it must never fail at runtime.
type Calendar struct {
	fixed   []fixedHoliday
	movable map[int]map[string]string
}

var _ ports.HolidaySource = (*Calendar)(nil)

// NewCalendar parses the embedded holiday file.
func NewCalendar() (*Calendar, error) {
	var file calendarFile
	if err := toml.Unmarshal(holidaysTOML, &file); err != nil {
		return nil, fmt.Errorf("parse embedded holiday calendar: %w", err)
	}

	movable := make(map[int]map[string]string)
	for _, h := range file.Movable {
		if len(h.Date) < 4 {
			continue
		}
		year, err := strconv.Atoi(h.Date[:4])
		if err != nil {
			return nil, fmt.Errorf("bad movable holiday date %q", h.Date)
		}
		if movable[year] == nil {
			movable[year] = make(map[string]string)
		}
		movable[year][h.Date] = h.Name
	}

	return &Calendar{fixed: file.Fixed, movable: movable}, nil
}

// Holidays returns the holidays of a year keyed by ISO date. Fixed holidays
// cover any year; Easter-dependent ones only the years present in the file.
func (c *Calendar) Holidays(_ context.Context, year int) (map[string]string, error) {
	out := make(map[string]string, len(c.fixed)+len(c.movable[year]))
	for _, h := range c.fixed {
		out[fmt.Sprintf("%04d-%02d-%02d", year, h.Month, h.Day)] = h.Name
	}
	for date, name := range c.movable[year] {
		out[date] = name
	}
	return out, nil
}
