package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ingestion metrics
	UpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_updates_received_total",
			Help: "Total number of raw updates received from the upstream feed by source",
		},
		[]string{"source"},
	)

	UpstreamReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairstream_upstream_reconnects_total",
			Help: "Total number of upstream feed reconnection attempts",
		},
	)

	DecodeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_decode_errors_total",
			Help: "Total number of instructions that failed to decode by discriminator",
		},
		[]string{"discriminator"},
	)

	DecodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pairstream_decode_duration_seconds",
			Help:    "Time taken to decode one instruction",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Dispatch / handler metrics
	EventsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_events_dispatched_total",
			Help: "Total number of decoded events dispatched by event type",
		},
		[]string{"event_type"},
	)

	HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pairstream_handler_duration_seconds",
			Help:    "Time taken by a per-event-type handler to persist a decoded event",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)

	HandlerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_handler_errors_total",
			Help: "Total number of handler failures by event type",
		},
		[]string{"event_type"},
	)

	// Storage metrics
	UpsertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_upserts_total",
			Help: "Total number of idempotent upserts by table",
		},
		[]string{"table"},
	)

	AdvisoryLockWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pairstream_advisory_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a Postgres advisory transaction lock",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Notify listener / dedup metrics
	NotificationsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_notifications_received_total",
			Help: "Total number of LISTEN/NOTIFY payloads received by channel",
		},
		[]string{"channel"},
	)

	DedupBufferSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairstream_dedup_buffer_size",
			Help: "Current number of entries held in the swap_updates dedup buffer",
		},
	)

	DedupHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairstream_dedup_hits_total",
			Help: "Total number of notifications suppressed as duplicates of a recent insert",
		},
	)

	DedupEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairstream_dedup_evictions_total",
			Help: "Total number of dedup buffer entries evicted for exceeding the size cap",
		},
	)

	ListenerReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_listener_reconnects_total",
			Help: "Total number of LISTEN/NOTIFY connection reconnect attempts by channel",
		},
		[]string{"channel"},
	)

	// Broadcast hub metrics
	SubscribersConnected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pairstream_subscribers_connected",
			Help: "Current number of connected subscribers by transport",
		},
		[]string{"transport"},
	)

	BroadcastLagEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairstream_broadcast_lag_events_total",
			Help: "Total number of times a subscriber fell behind and skipped messages",
		},
	)

	SubscribersEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairstream_subscribers_evicted_total",
			Help: "Total number of subscribers evicted for exceeding the lag threshold",
		},
	)

	// Transport request metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairstream_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pairstream_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Supervisor metrics
	SupervisorRestartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairstream_supervisor_restarts_total",
			Help: "Total number of times the supervisor restarted the ingestion pipeline",
		},
	)

	SupervisorBackoffSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairstream_supervisor_backoff_seconds",
			Help: "Current backoff delay before the next supervisor restart attempt",
		},
	)
)

func init() {
	prometheus.MustRegister(
		UpdatesReceivedTotal,
		UpstreamReconnectsTotal,
		DecodeErrorsTotal,
		DecodeDuration,
		EventsDispatchedTotal,
		HandlerDuration,
		HandlerErrorsTotal,
		UpsertsTotal,
		AdvisoryLockWaitDuration,
		NotificationsReceivedTotal,
		DedupBufferSize,
		DedupHitsTotal,
		DedupEvictionsTotal,
		ListenerReconnectsTotal,
		SubscribersConnected,
		BroadcastLagEventsTotal,
		SubscribersEvictedTotal,
		APIRequestsTotal,
		APIRequestDuration,
		SupervisorRestartsTotal,
		SupervisorBackoffSeconds,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
