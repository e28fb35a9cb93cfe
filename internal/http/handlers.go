package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startTime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.prober != nil {
		if _, err := s.prober.Myself(ctx); err != nil {
			checks["timesheet"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["timesheet"] = "ok"
		}
	} else {
		checks["timesheet"] = "not_configured"
	}

	// The snapshot store keeps grids usable during timesheet outages, so a
	// broken store degrades readiness too.
	if s.store != nil {
		if _, err := s.store.ListStale(ctx, time.Unix(0, 0)); err != nil {
			checks["snapshot_store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["snapshot_store"] = "ok"
		}
	} else {
		checks["snapshot_store"] = "not_configured"
	}

	checks["cache"] = map[string]any{
		"svg_entries":  s.svgCache.Size(),
		"page_entries": s.pageCache.Size(),
		"status":       "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	traceMetrics := s.tracer.GetMetrics()

	calendarRenders := atomic.LoadInt64(&s.metrics.calendarRenders)
	gridRenders := atomic.LoadInt64(&s.metrics.gridRenders)
	detailRenders := atomic.LoadInt64(&s.metrics.detailRenders)
	cacheHits := atomic.LoadInt64(&s.metrics.cacheHits)
	cacheMisses := atomic.LoadInt64(&s.metrics.cacheMisses)
	badRequests := atomic.LoadInt64(&s.metrics.badRequests)
	authFailures := atomic.LoadInt64(&s.metrics.authFailures)
	uptime := time.Since(s.metrics.startTime)

	fmt.Fprintf(w, "# HELP dopust_requests_total Total HTTP requests processed\n")
	fmt.Fprintf(w, "# TYPE dopust_requests_total counter\n")
	fmt.Fprintf(w, "dopust_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP dopust_renders_total Rendered responses by kind\n")
	fmt.Fprintf(w, "# TYPE dopust_renders_total counter\n")
	fmt.Fprintf(w, "dopust_renders_total{kind=\"calendar\"} %d\n", calendarRenders)
	fmt.Fprintf(w, "dopust_renders_total{kind=\"grid\"} %d\n", gridRenders)
	fmt.Fprintf(w, "dopust_renders_total{kind=\"grid_detail\"} %d\n\n", detailRenders)

	fmt.Fprintf(w, "# HELP dopust_cache_hits_total Response cache hits\n")
	fmt.Fprintf(w, "# TYPE dopust_cache_hits_total counter\n")
	fmt.Fprintf(w, "dopust_cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP dopust_cache_misses_total Response cache misses\n")
	fmt.Fprintf(w, "# TYPE dopust_cache_misses_total counter\n")
	fmt.Fprintf(w, "dopust_cache_misses_total %d\n\n", cacheMisses)

	fmt.Fprintf(w, "# HELP dopust_cache_entries Current response cache entries\n")
	fmt.Fprintf(w, "# TYPE dopust_cache_entries gauge\n")
	fmt.Fprintf(w, "dopust_cache_entries{cache=\"svg\"} %d\n", s.svgCache.Size())
	fmt.Fprintf(w, "dopust_cache_entries{cache=\"page\"} %d\n\n", s.pageCache.Size())

	fmt.Fprintf(w, "# HELP dopust_bad_requests_total Requests rejected for invalid parameters\n")
	fmt.Fprintf(w, "# TYPE dopust_bad_requests_total counter\n")
	fmt.Fprintf(w, "dopust_bad_requests_total %d\n\n", badRequests)

	fmt.Fprintf(w, "# HELP dopust_auth_failures_total Requests rejected for a bad URL hash\n")
	fmt.Fprintf(w, "# TYPE dopust_auth_failures_total counter\n")
	fmt.Fprintf(w, "dopust_auth_failures_total %d\n\n", authFailures)

	fmt.Fprintf(w, "# HELP dopust_rate_limit_hits_total Requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE dopust_rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "dopust_rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP dopust_suspicious_requests_total Requests flagged by pattern detection\n")
	fmt.Fprintf(w, "# TYPE dopust_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "dopust_suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP dopust_uptime_seconds Time since process start\n")
	fmt.Fprintf(w, "# TYPE dopust_uptime_seconds gauge\n")
	fmt.Fprintf(w, "dopust_uptime_seconds %.0f\n", uptime.Seconds())
}

// writeBadRequest rejects a request with a plain error message.
func (s *Server) writeBadRequest(w http.ResponseWriter, err error) {
	atomic.AddInt64(&s.metrics.badRequests, 1)
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// writeForbidden rejects a request whose URL hash did not verify.
func (s *Server) writeForbidden(w http.ResponseWriter) {
	atomic.AddInt64(&s.metrics.authFailures, 1)
	http.Error(w, "Invalid hash", http.StatusForbidden)
}
