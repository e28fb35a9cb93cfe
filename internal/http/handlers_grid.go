package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"dopust/internal/core"
	applog "dopust/internal/log"
)

// Heatmap hues for the grid cells: ratio 1x maps to hue 30 (orange), 4x and
// above to hue 210 (blue).
const (
	heatmapMinHue   = 30.0
	heatmapMaxHue   = 210.0
	heatmapMinRatio = 1.0
	heatmapMaxRatio = 4.0
)

type (
	gridCell struct {
		Count int
		Empty bool
		// Color is a computed hsl() value; template.CSS because the
		// html/template CSS filter rejects functional notation.
		Color     template.CSS
		DetailURL string
	}

	gridRow struct {
		DaysOff int
		Cells   []gridCell
	}

	gridPage struct {
		Year     int
		Username string
		Hash     string
		Budget   int
		Rows     []gridRow // days off, descending
		XLabels  []int
	}

	daySquare struct {
		Color   string
		Opacity string
		Title   string
	}

	detailRow struct {
		Index   int
		Range   string
		Squares []daySquare
	}

	detailPage struct {
		Year      int
		Username  string
		Hash      string
		Spent     int
		DaysOff   int
		RatioText string
		BackURL   string
		Periods   []detailRow
	}
)

// handleVacationGrid renders the 2D histogram of achievable vacation periods.
func (s *Server) handleVacationGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	p, err := parseGridParams(r, s.cfg.DefaultGridBudget)
	if err != nil {
		s.writeBadRequest(w, err)
		return
	}
	if !verifyHash(p.Hash, GridHash(s.cfg.HashSecret, p.Year, p.Username)) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Grid hash mismatch", "year", p.Year, "username", p.Username)
		s.writeForbidden(w)
		return
	}

	key := fmt.Sprintf("grid:%d-%s-%d", p.Year, p.Username, p.Budget)
	page, cached, err := s.pageCache.GetOrCompute(key, func() ([]byte, error) {
		atomic.AddInt64(&s.metrics.cacheMisses, 1)
		atomic.AddInt64(&s.metrics.gridRenders, 1)

		grid, err := s.planner.VacationGrid(r.Context(), p.Username, p.Year, p.Budget, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		return s.renderTemplate("grid.html", buildGridPage(p, grid))
	})
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Grid render failed",
			"year", p.Year,
			"username", p.Username,
			"budget", p.Budget,
			"error", err)
		http.Error(w, "vacation grid unavailable", http.StatusBadGateway)
		return
	}
	if cached {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
	}

	s.writeHTML(w, page)
}

// handleVacationGridDetail lists the concrete periods behind one grid cell.
func (s *Server) handleVacationGridDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	p, err := parseDetailParams(r, s.cfg.DefaultGridBudget)
	if err != nil {
		s.writeBadRequest(w, err)
		return
	}
	if !verifyHash(p.Hash, GridHash(s.cfg.HashSecret, p.Year, p.Username)) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Grid detail hash mismatch", "year", p.Year, "username", p.Username)
		s.writeForbidden(w)
		return
	}

	key := fmt.Sprintf("detail:%d-%s-%d-%d", p.Year, p.Username, p.Spent, p.DaysOff)
	page, cached, err := s.pageCache.GetOrCompute(key, func() ([]byte, error) {
		atomic.AddInt64(&s.metrics.cacheMisses, 1)
		atomic.AddInt64(&s.metrics.detailRenders, 1)

		matches, err := s.planner.CellPeriods(r.Context(), p.Username, p.Year, p.Spent, p.DaysOff, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		return s.renderTemplate("grid_detail.html", buildDetailPage(p, matches))
	})
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Grid detail render failed",
			"year", p.Year,
			"username", p.Username,
			"spent", p.Spent,
			"days_off", p.DaysOff,
			"error", err)
		http.Error(w, "period details unavailable", http.StatusBadGateway)
		return
	}
	if cached {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
	}

	s.writeHTML(w, page)
}

func (s *Server) renderTemplate(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (s *Server) writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.CacheTTL.Seconds())))
	_, _ = w.Write(page)
}

func buildGridPage(p gridParams, grid core.Grid) gridPage {
	page := gridPage{
		Year:     p.Year,
		Username: p.Username,
		Hash:     p.Hash,
		Budget:   p.Budget,
	}
	for spent := 0; spent <= grid.MaxBudget; spent++ {
		page.XLabels = append(page.XLabels, spent)
	}

	// Rows render top-down with the longest periods first.
	for off := grid.MaxDaysOff; off >= 1; off-- {
		row := gridRow{DaysOff: off}
		for spent := 0; spent <= grid.MaxBudget; spent++ {
			count := grid.Cells[off-1][spent]
			if count == 0 {
				row.Cells = append(row.Cells, gridCell{Empty: true})
				continue
			}
			row.Cells = append(row.Cells, gridCell{
				Count:     count,
				Color:     ratioColor(off, spent),
				DetailURL: detailURL(p, spent, off),
			})
		}
		page.Rows = append(page.Rows, row)
	}
	return page
}

// ratioColor maps the days-off-per-day-spent ratio onto the heatmap. A spend
// of zero is free time and clamps to the best hue.
func ratioColor(daysOff, spent int) template.CSS {
	ratio := heatmapMaxRatio
	if spent > 0 {
		ratio = float64(daysOff) / float64(spent)
	}
	if ratio < heatmapMinRatio {
		ratio = heatmapMinRatio
	}
	if ratio > heatmapMaxRatio {
		ratio = heatmapMaxRatio
	}
	hue := heatmapMinHue + (ratio-heatmapMinRatio)*(heatmapMaxHue-heatmapMinHue)/(heatmapMaxRatio-heatmapMinRatio)
	return template.CSS(fmt.Sprintf("hsl(%.0f, 70%%, 45%%)", hue))
}

func detailURL(p gridParams, spent, off int) string {
	q := url.Values{}
	q.Set("year", fmt.Sprintf("%d", p.Year))
	q.Set("username", p.Username)
	q.Set("hash", p.Hash)
	q.Set("spent", fmt.Sprintf("%d", spent))
	q.Set("off", fmt.Sprintf("%d", off))
	return "/vacation-grid-detail?" + q.Encode()
}

func buildDetailPage(p detailParams, matches []core.PeriodMatch) detailPage {
	ratioText := "FREE"
	if p.Spent > 0 {
		ratioText = fmt.Sprintf("%.1fx", float64(p.DaysOff)/float64(p.Spent))
	}

	back := url.Values{}
	back.Set("year", fmt.Sprintf("%d", p.Year))
	back.Set("username", p.Username)
	back.Set("hash", p.Hash)

	page := detailPage{
		Year:      p.Year,
		Username:  p.Username,
		Hash:      p.Hash,
		Spent:     p.Spent,
		DaysOff:   p.DaysOff,
		RatioText: ratioText,
		BackURL:   "/vacation-grid?" + back.Encode(),
	}

	for i, m := range matches {
		row := detailRow{
			Index: i + 1,
			Range: fmt.Sprintf("%s - %s", m.Start.Format("02 Jan"), m.End.Format("02 Jan")),
		}
		for _, d := range m.Days {
			row.Squares = append(row.Squares, daySquare{
				Color:   dayColor(d),
				Opacity: fmt.Sprintf("%.2f", d.Opacity),
				Title:   dayTitle(d),
			})
		}
		page.Periods = append(page.Periods, row)
	}
	return page
}

func dayColor(d core.PeriodDay) string {
	switch {
	case d.IsWorking && d.InPeriod:
		return "#1976D2" // vacation day
	case d.IsWorking:
		return "#9E9E9E" // working day outside the period
	case d.IsWeekend:
		return "#CE93D8"
	default:
		return "#81D4FA" // holiday
	}
}

func dayTitle(d core.PeriodDay) string {
	title := d.Date.Format("02 Jan Mon")
	if d.InPeriod && d.IsWorking {
		title += " (vacation)"
	}
	return title
}
