// Package health tracks the readiness of the daemon's long-running
// components and serves the /health and /stats endpoints consumed by
// orchestrators and dashboards.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Component names tracked by the daemon.
const (
	ComponentUpstream = "upstream"
	ComponentDatabase = "database"
	ComponentListener = "listener"
)

// Reporter aggregates the ready/not-ready state of each tracked component.
// A component that has never reported is not counted by Healthy; only a
// component explicitly set not ready makes the reporter unhealthy.
type Reporter struct {
	mu         sync.RWMutex
	ready      map[string]bool
	startedAt  time.Time
	subscriberCounter func() int
}

// NewReporter creates a Reporter. subscriberCounter, if non-nil, is
// consulted by StatsHandler to report the live subscriber count.
func NewReporter(subscriberCounter func() int) *Reporter {
	return &Reporter{
		ready:             make(map[string]bool),
		startedAt:         time.Now(),
		subscriberCounter: subscriberCounter,
	}
}

// SetReady records the current readiness of a named component.
func (r *Reporter) SetReady(component string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready[component] = ready
}

// Healthy reports true only when every component that has reported in is
// ready. It does not require every known component to have reported,
// matching the daemon's own startup sequencing (the health server starts
// before the upstream connection does).
func (r *Reporter) Healthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ready := range r.ready {
		if !ready {
			return false
		}
	}
	return true
}

// Handler serves a plain "OK" with 200 when healthy, or 503 otherwise,
// matching the upstream daemon's minimal health route.
func (r *Reporter) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if !r.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// statsResponse is the JSON body served by StatsHandler.
type statsResponse struct {
	ConnectedClients int    `json:"connected_clients"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Status           string `json:"status"`
}

// StatsHandler serves a small JSON snapshot of runtime stats.
func (r *Reporter) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		count := 0
		if r.subscriberCounter != nil {
			count = r.subscriberCounter()
		}
		status := "healthy"
		if !r.Healthy() {
			status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statsResponse{
			ConnectedClients: count,
			UptimeSeconds:    int64(time.Since(r.startedAt).Seconds()),
			Status:           status,
		})
	}
}
