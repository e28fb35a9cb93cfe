// Package http serves the calendar SVG and vacation grid pages. Every
// data-bearing route is authenticated with an HMAC carried in the URL and
// rendered responses are cached behind a bounded TTL+LRU cache.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dopust/internal/cache"
	"dopust/internal/core"
	applog "dopust/internal/log"
	"dopust/internal/middleware/ratelimit"
	"dopust/internal/middleware/security"
	"dopust/internal/middleware/trace"
	"dopust/internal/services"
	"dopust/internal/storage"
	"dopust/internal/timesheet"
	appweb "dopust/web"
)

// CalendarService produces the month work-hours report behind /calendar.
type CalendarService interface {
	MonthCalendar(ctx context.Context, req services.CalendarRequest) (core.MonthReport, error)
}

// Planner answers the vacation grid and cell detail queries.
type Planner interface {
	VacationGrid(ctx context.Context, username string, year, maxBudget int, today time.Time) (core.Grid, error)
	CellPeriods(ctx context.Context, username string, year, spent, daysOff int, today time.Time) ([]core.PeriodMatch, error)
}

// Config holds the HTTP server settings derived from the app config.
type Config struct {
	Addr               string
	HashSecret         string
	CacheTTL           time.Duration
	CacheMaxEntries    int
	RateLimitPerMinute int
	DefaultGridBudget  int
}

// appMetrics tracks application level counters for the metrics endpoint.
type appMetrics struct {
	startTime time.Time

	calendarRenders int64 // atomic
	gridRenders     int64 // atomic
	detailRenders   int64 // atomic
	cacheHits       int64 // atomic
	cacheMisses     int64 // atomic
	badRequests     int64 // atomic
	authFailures    int64 // atomic
}

// Server is the dopust HTTP server.
type Server struct {
	http.Server

	cfg       Config
	logger    *applog.Logger
	templates *template.Template

	reports CalendarService
	planner Planner
	prober  timesheet.SelfProber
	store   storage.SnapshotStore

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	headers  *security.HeadersMiddleware

	svgCache     *cache.Loader[[]byte]
	pageCache    *cache.Loader[[]byte]
	cacheManager *cache.Manager

	metrics      *appMetrics
	shutdownOnce sync.Once
}

// NewServer wires routes, middleware, templates and caches into a
// ready-to-run server.
func NewServer(cfg Config, reports CalendarService, planner Planner, prober timesheet.SelfProber, store storage.SnapshotStore) *Server {
	mux := http.NewServeMux()

	detector := security.NewDetector()

	svgLRU := cache.NewLRUCache[[]byte](cfg.CacheMaxEntries, cfg.CacheTTL)
	pageLRU := cache.NewLRUCache[[]byte](cfg.CacheMaxEntries, cfg.CacheTTL)
	manager := cache.NewManager()
	manager.Register(svgLRU)
	manager.Register(pageLRU)
	manager.StartCleanup(10 * time.Minute)

	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentHTTP
	logger := applog.New(logCfg)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		reports:  reports,
		planner:  planner,
		prober:   prober,
		store:    store,
		detector: detector,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		svgCache:     cache.NewLoader(svgLRU),
		pageCache:    cache.NewLoader(pageLRU),
		cacheManager: manager,
		metrics:      &appMetrics{startTime: time.Now()},
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/calendar", s.handleCalendar)
	mux.HandleFunc("/vacation-grid", s.handleVacationGrid)
	mux.HandleFunc("/vacation-grid-detail", s.handleVacationGridDetail)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.Server = http.Server{
		Addr:    cfg.Addr,
		Handler: s.chain(mux),
	}

	return s
}

// chain applies the shared middleware stack: tracing outermost so every
// request gets an ID, then rate limiting, suspicious request accounting,
// the request-scoped logger and security headers.
func (s *Server) chain(next http.Handler) http.Handler {
	h := s.headers.Middleware(next)
	h = applog.Middleware(s.logger)(h)
	h = s.suspiciousRequestLogging(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
	return s.tracer.Middleware(h)
}

func (s *Server) suspiciousRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "Rate limit exceeded",
		"client_ip", s.detector.ExtractClientIP(r),
		"path", r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown stops the HTTP server and all background goroutines exactly once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
