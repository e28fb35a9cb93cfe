package http

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	applog "dopust/internal/log"
	"dopust/internal/services"
	"dopust/internal/svgcal"
)

// handleCalendar renders the month work-hours calendar as SVG. The response
// is cached per full parameter set so wiki pages embedding the image do not
// hit the timesheet service on every load.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	p, err := parseCalendarParams(r)
	if err != nil {
		s.writeBadRequest(w, err)
		return
	}
	if !verifyHash(p.Hash, CalendarHash(s.cfg.HashSecret, p.Year, p.Month, p.Username)) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Calendar hash mismatch",
			"year", p.Year,
			"month", p.Month,
			"username", p.Username)
		s.writeForbidden(w)
		return
	}

	key := calendarCacheKey(p)
	svg, cached, err := s.svgCache.GetOrCompute(key, func() ([]byte, error) {
		atomic.AddInt64(&s.metrics.cacheMisses, 1)
		return s.renderCalendar(r, p)
	})
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Calendar render failed",
			"year", p.Year,
			"month", p.Month,
			"username", p.Username,
			"error", err)
		http.Error(w, "calendar unavailable", http.StatusBadGateway)
		return
	}
	if cached {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.CacheTTL.Seconds())))
	_, _ = w.Write(svg)
}

func (s *Server) renderCalendar(r *http.Request, p calendarParams) ([]byte, error) {
	atomic.AddInt64(&s.metrics.calendarRenders, 1)

	report, err := s.reports.MonthCalendar(r.Context(), services.CalendarRequest{
		Username:          p.Username,
		Year:              p.Year,
		Month:             p.Month,
		Today:             time.Now().UTC(),
		ExtraVacationDays: p.VacationDays,
		DailyHours:        p.DailyHours,
		StartedWorking:    p.StartedWorking,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	svgcal.Render(&buf, p.Username, report)
	return buf.Bytes(), nil
}

func calendarCacheKey(p calendarParams) string {
	days := make([]string, 0, len(p.VacationDays))
	for d := range p.VacationDays {
		days = append(days, d)
	}
	sort.Strings(days)
	return fmt.Sprintf("calendar:%d-%d-%s-%s-%.2f-%s",
		p.Year, p.Month, p.Username, strings.Join(days, ","), p.DailyHours, p.StartedWorking)
}
