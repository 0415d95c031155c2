package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	applog "hisab/internal/log"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady answers 503 while the database does not respond to a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed",
				applog.FieldError, err.Error(),
				applog.FieldErrorType, applog.ErrorTypeDatabase)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics provides request and security counters in plain text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	chartEntries := 0
	if s.chartCache != nil {
		chartEntries = s.chartCache.Size()
	}

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_response_time_avg_microseconds Mean response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", limitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP rate_limit_active_clients Clients tracked by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_active_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_active_clients %d\n\n", limitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP security_suspicious_requests_total Requests flagged as suspicious\n")
	fmt.Fprintf(w, "# TYPE security_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "security_suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP chart_cache_entries Current chart cache entries\n")
	fmt.Fprintf(w, "# TYPE chart_cache_entries gauge\n")
	fmt.Fprintf(w, "chart_cache_entries %d\n\n", chartEntries)

	fmt.Fprintf(w, "# HELP process_uptime_seconds Time since the server was created\n")
	fmt.Fprintf(w, "# TYPE process_uptime_seconds gauge\n")
	fmt.Fprintf(w, "process_uptime_seconds %.0f\n", s.now().Sub(s.started).Seconds())
}
