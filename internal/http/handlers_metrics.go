package http

import (
	"fmt"
	"net/http"
	"time"
)

// CacheStats is the read side of an LRU cache.
type CacheStats interface {
	Size() int
	Stats() (hits, misses uint64)
}

type metric struct {
	name, help, kind string
	value            any
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	tm := s.tracer.GetMetrics()
	rm := s.limiter.GetMetrics()
	sm := s.detector.GetMetrics()

	metrics := []metric{
		{"http_requests_total", "Total number of HTTP requests", "counter", tm.TotalRequests},
		{"http_server_errors_total", "Responses with a 5xx status", "counter", tm.ServerErrors},
		{"http_last_response_microseconds", "Duration of the most recent request", "gauge", tm.AverageResponseTime},
		{"rate_limit_rejected_total", "Writes rejected by the rate limiter", "counter", rm.Rejected},
		{"rate_limit_active_clients", "Clients tracked by the rate limiter", "gauge", rm.ClientCount},
		{"security_suspicious_requests_total", "Requests matching a probe pattern", "counter", sm.SuspiciousRequests},
		{"security_blocked_requests_total", "Requests rejected as probes", "counter", sm.BlockedRequests},
		{"uptime_seconds", "Seconds since the server started", "gauge", int64(time.Since(s.started).Seconds())},
	}
	if s.holidayCache != nil {
		hits, misses := s.holidayCache.Stats()
		metrics = append(metrics,
			metric{"holiday_cache_entries", "Years held in the holiday cache", "gauge", s.holidayCache.Size()},
			metric{"holiday_cache_hits_total", "Holiday cache hits", "counter", hits},
			metric{"holiday_cache_misses_total", "Holiday cache misses", "counter", misses},
		)
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}
