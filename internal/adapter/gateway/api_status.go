package gateway

import (
	"net/http"
	"time"
)

// StatusResponse is the JSON body returned by GET /v1/status.
type StatusResponse struct {
	Service     ServiceStatus     `json:"service"`
	Engines     EngineStatus      `json:"engines"`
	RateLimiter RateLimiterStatus `json:"rate_limiter"`
}

// ServiceStatus holds service overview info.
type ServiceStatus struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// EngineStatus holds the configured engine list, the failing subset, and
// the failing engines already past the retry horizon.
type EngineStatus struct {
	Configured []string `json:"configured"`
	Failing    []string `json:"failing"`
	Retryable  []string `json:"retryable"`
}

// RateLimiterStatus holds the outbound query budget left in the current window.
type RateLimiterStatus struct {
	Remaining int `json:"remaining"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	failing := s.client.FailingEngines()
	if failing == nil {
		failing = []string{}
	}
	retryable := s.client.RetryableEngines()
	if retryable == nil {
		retryable = []string{}
	}

	writeJSON(w, StatusResponse{
		Service: ServiceStatus{
			Name:          "metasearch",
			Version:       "1.0.0",
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		},
		Engines: EngineStatus{
			Configured: s.client.EngineNames(),
			Failing:    failing,
			Retryable:  retryable,
		},
		RateLimiter: RateLimiterStatus{
			Remaining: s.client.RateRemaining(),
		},
	})
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
