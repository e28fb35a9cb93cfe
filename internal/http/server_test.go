package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dopust/internal/services"
	"dopust/internal/storage"
	tsmemory "dopust/internal/timesheet/memory"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, *tsmemory.Store) {
	t.Helper()

	ts := tsmemory.New()
	store := storage.NewMemoryStore()
	reports := services.NewReportService(ts, ts, nil, store, nil, services.ReportServiceConfig{
		SnapshotTTL: time.Hour,
		Policy:      services.AgeChecker{},
	})

	srv := NewServer(Config{
		Addr:               ":0",
		HashSecret:         testSecret,
		CacheTTL:           time.Minute,
		CacheMaxEntries:    16,
		RateLimitPerMinute: 1000,
		DefaultGridBudget:  5,
	}, reports, reports, ts, store)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return srv, ts
}

func doRequest(srv *Server, method, target string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, r)
	return w
}

// planYear is a year whose timeline is guaranteed non-empty when the tests
// run, since the handlers read the real clock.
func planYear() int {
	return time.Now().Year() + 1
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestHandleReady(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/readyz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"status":"ready"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestHandleMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	for _, marker := range []string{
		"dopust_requests_total",
		"dopust_cache_entries",
		"dopust_uptime_seconds",
	} {
		if !strings.Contains(w.Body.String(), marker) {
			t.Fatalf("metrics output missing %q", marker)
		}
	}
}

func TestVacationGrid_InvalidHash(t *testing.T) {
	srv, _ := newTestServer(t)

	url := fmt.Sprintf("/vacation-grid?year=%d&username=ana&hash=deadbeef", planYear())
	w := doRequest(srv, http.MethodGet, url)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestVacationGrid_BadParams(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/vacation-grid?year=1999&username=ana&hash=x")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestVacationGrid_OK(t *testing.T) {
	srv, _ := newTestServer(t)
	year := planYear()

	url := fmt.Sprintf("/vacation-grid?year=%d&username=ana&hash=%s", year, GridHash(testSecret, year, "ana"))
	w := doRequest(srv, http.MethodGet, url)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %s", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, fmt.Sprintf("Vacation Possibilities Grid - %d", year)) {
		t.Fatal("grid title missing")
	}
	// Weekends alone guarantee free periods, so the budget-0 column links out.
	if !strings.Contains(body, "/vacation-grid-detail?") {
		t.Fatal("expected at least one detail link")
	}
	if !strings.Contains(w.Header().Get("Cache-Control"), "max-age=60") {
		t.Fatalf("cache control = %s", w.Header().Get("Cache-Control"))
	}
}

func TestVacationGridDetail_FreeWeekend(t *testing.T) {
	srv, _ := newTestServer(t)
	year := planYear()

	// Default classification makes every Saturday+Sunday a spent=0, off=2 period.
	url := fmt.Sprintf("/vacation-grid-detail?year=%d&username=ana&hash=%s&spent=0&off=2",
		year, GridHash(testSecret, year, "ana"))
	w := doRequest(srv, http.MethodGet, url)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "Spend 0 days, get 2 days off (FREE)") {
		t.Fatal("detail heading missing")
	}
	if strings.Contains(body, "No periods found") {
		t.Fatal("expected weekend periods, found none")
	}
}

func TestVacationGridDetail_UnachievableCell(t *testing.T) {
	srv, _ := newTestServer(t)
	year := planYear()

	url := fmt.Sprintf("/vacation-grid-detail?year=%d&username=ana&hash=%s&spent=50&off=399",
		year, GridHash(testSecret, year, "ana"))
	w := doRequest(srv, http.MethodGet, url)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "No periods found") {
		t.Fatal("expected empty result row")
	}
}

func TestCalendar_OK(t *testing.T) {
	srv, _ := newTestServer(t)
	year := planYear()

	url := fmt.Sprintf("/calendar?year=%d&month=1&username=ana&hash=%s",
		year, CalendarHash(testSecret, year, 1, "ana"))
	w := doRequest(srv, http.MethodGet, url)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("content type = %s", ct)
	}
	if !strings.Contains(w.Body.String(), "Work Hours Calendar") {
		t.Fatal("SVG title missing")
	}
}

func TestCalendar_InvalidHash(t *testing.T) {
	srv, _ := newTestServer(t)
	year := planYear()

	// A grid hash must not open the calendar route.
	url := fmt.Sprintf("/calendar?year=%d&month=1&username=ana&hash=%s",
		year, GridHash(testSecret, year, "ana"))
	w := doRequest(srv, http.MethodGet, url)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCalendar_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/calendar?year=2026&month=1&username=ana&hash=x")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestVacationGrid_ResponseCached(t *testing.T) {
	srv, ts := newTestServer(t)
	year := planYear()

	url := fmt.Sprintf("/vacation-grid?year=%d&username=ana&hash=%s", year, GridHash(testSecret, year, "ana"))
	first := doRequest(srv, http.MethodGet, url)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}

	// Break the upstream: the cached page must still be served.
	ts.FailWith(fmt.Errorf("tempo down"))
	second := doRequest(srv, http.MethodGet, url)
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d, want 200 from cache", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatal("cached response differs from original")
	}
}
