package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"budgetly/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and store connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.deps.Store == nil {
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.deps.Store.Ping(ctx); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Readiness check failed",
			log.FieldError, err)
		checks["store"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n", name, help, name, kind, name, value)
	}
	metric("budgetly_uptime_seconds", "Seconds since the server started.", "gauge", int64(time.Since(s.started).Seconds()))
	metric("budgetly_rate_limit_hits_total", "Requests rejected by the rate limiter.", "counter", s.limiter.Hits())
	metric("budgetly_rate_limit_clients", "Clients tracked by the rate limiter.", "gauge", s.limiter.ActiveClients())
	metric("budgetly_suspicious_requests_total", "Requests matching a probing pattern.", "counter", s.detector.SuspiciousCount())
	if s.deps.CacheStats != nil {
		st := s.deps.CacheStats()
		metric("budgetly_insights_cache_hits_total", "Dashboard cache hits.", "counter", st.Hits)
		metric("budgetly_insights_cache_misses_total", "Dashboard cache misses.", "counter", st.Misses)
	}
}
