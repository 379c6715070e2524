package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuemby/pairstream/pkg/health"
	"github.com/cuemby/pairstream/pkg/metrics"
)

// HealthServer is the operator-facing HTTP server on HEALTH_PORT: a
// liveness probe, a readiness probe that checks the datastore pool and
// every component a *health.Reporter is tracking, and the Prometheus
// scrape endpoint. It is independent of the gRPC and websocket ports,
// which carry their own lightweight health routes for their own
// clients.
type HealthServer struct {
	pool     *pgxpool.Pool
	reporter *health.Reporter
	mux      *http.ServeMux
}

// NewHealthServer wires the liveness, readiness, and metrics routes.
// reporter may be nil, in which case readiness depends on the
// datastore pool alone.
func NewHealthServer(pool *pgxpool.Pool, reporter *health.Reporter) *HealthServer {
	hs := &HealthServer{pool: pool, reporter: reporter, mux: http.NewServeMux()}
	hs.mux.HandleFunc("/health", hs.healthHandler)
	hs.mux.HandleFunc("/ready", hs.readyHandler)
	hs.mux.Handle("/metrics", metrics.Handler())
	return hs
}

// Serve blocks until ctx is canceled.
func (hs *HealthServer) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      hs.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// healthHandler is a liveness check: if the process can answer, it's alive.
func (hs *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// readyResponse reports whether the datastore pool is reachable.
type readyResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// readyHandler is a readiness check: ready means the datastore pool
// answers a ping within the request's deadline and, when a reporter is
// configured, no component it tracks (datastore, ingest, swap listener)
// has reported itself not ready.
func (hs *HealthServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := readyResponse{Status: "ready"}
	statusCode := http.StatusOK

	if hs.pool == nil {
		resp.Status, resp.Error = "not ready", "datastore pool not configured"
		statusCode = http.StatusServiceUnavailable
	} else if err := hs.pool.Ping(r.Context()); err != nil {
		resp.Status, resp.Error = "not ready", err.Error()
		statusCode = http.StatusServiceUnavailable
	} else if hs.reporter != nil && !hs.reporter.Healthy() {
		resp.Status, resp.Error = "not ready", "one or more components not ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
