package memory

import (
	"context"
	"sync"

	"dopust/internal/core"
	ports "dopust/internal/timesheet"
)

// Store is an in-memory timesheet used by tests and local development. All
// readers honor the configured failure first, so fallback paths can be
// exercised without a network.
type Store struct {
	mu       sync.Mutex
	account  string
	worklogs map[string][]core.WorklogEntry
	dayTypes map[string]map[string]core.Classification
	holidays map[int]map[string]string
	failWith error
}

// Ensure interface conformance
var (
	_ ports.WorklogReader = (*Store)(nil)
	_ ports.DayTypeReader = (*Store)(nil)
	_ ports.SelfProber    = (*Store)(nil)
	_ ports.HolidaySource = (*Store)(nil)
)

func New() *Store {
	return &Store{
		account:  "local",
		worklogs: make(map[string][]core.WorklogEntry),
		dayTypes: make(map[string]map[string]core.Classification),
		holidays: make(map[int]map[string]string),
	}
}

// AddWorklog records a worklog entry for username.
func (s *Store) AddWorklog(username string, e core.WorklogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worklogs[username] = append(s.worklogs[username], e)
}

// SetDayType records a day classification for username.
func (s *Store) SetDayType(username, date string, class core.Classification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dayTypes[username] == nil {
		s.dayTypes[username] = make(map[string]core.Classification)
	}
	s.dayTypes[username][date] = class
}

// AddHoliday records a public holiday.
func (s *Store) AddHoliday(year int, date, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holidays[year] == nil {
		s.holidays[year] = make(map[string]string)
	}
	s.holidays[year][date] = name
}

// FailWith makes every subsequent read return err. Pass nil to heal.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Myself(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", s.failWith
	}
	return s.account, nil
}

func (s *Store) ListWorklogs(_ context.Context, username, from, to string) ([]core.WorklogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	var out []core.WorklogEntry
	for _, e := range s.worklogs[username] {
		// ISO dates compare correctly as strings.
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ListDayTypes(_ context.Context, username, from, to string) (map[string]core.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	out := make(map[string]core.Classification)
	for date, class := range s.dayTypes[username] {
		if date >= from && date <= to {
			out[date] = class
		}
	}
	return out, nil
}

func (s *Store) Holidays(_ context.Context, year int) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	out := make(map[string]string, len(s.holidays[year]))
	for date, name := range s.holidays[year] {
		out[date] = name
	}
	return out, nil
}
