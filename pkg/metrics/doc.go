/*
Package metrics defines and registers every Prometheus metric this
daemon exposes, from the upstream feed down through decoding,
dispatch, persistence, the notify listeners, and the broadcast hub.
All metrics are registered against the default Prometheus registry at
package init and served by Handler() on the health server's /metrics
route.

# Metric Catalog

Ingestion:

  pairstream_updates_received_total{source}
  pairstream_upstream_reconnects_total
  pairstream_decode_errors_total{discriminator}
  pairstream_decode_duration_seconds

Dispatch and handlers:

  pairstream_events_dispatched_total{event_type}
  pairstream_handler_duration_seconds{event_type}
  pairstream_handler_errors_total{event_type}

Storage:

  pairstream_upserts_total{table}
  pairstream_advisory_lock_wait_seconds

Notify listeners and dedup:

  pairstream_notifications_received_total{channel}
  pairstream_dedup_buffer_size
  pairstream_dedup_hits_total
  pairstream_dedup_evictions_total
  pairstream_listener_reconnects_total{channel}

Broadcast hub:

  pairstream_subscribers_connected{transport}
  pairstream_broadcast_lag_events_total
  pairstream_subscribers_evicted_total

Transport:

  pairstream_api_requests_total{method,status}
  pairstream_api_request_duration_seconds{method}

Supervisor:

  pairstream_supervisor_restarts_total
  pairstream_supervisor_backoff_seconds

# Timer

Timer is a small convenience wrapper for the common start-now,
observe-duration-later pattern used around decode, handler, and
advisory-lock-wait measurements:

	timer := metrics.NewTimer()
	// ... do work ...
	timer.ObserveDuration(metrics.DecodeDuration)

ObserveDurationVec does the same against a HistogramVec that needs
label values, as HandlerDuration and APIRequestDuration do.
*/
package metrics
