package listener

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/metrics"
)

// PositionListener re-broadcasts every user_position_updates
// notification directly onto the hub. It carries no dedup buffer:
// position updates aren't subject to the swap channel's
// insert-then-enrich pattern, so there's nothing to wait for.
type PositionListener struct {
	pool   *pgxpool.Pool
	hub    *events.Hub
	logger zerolog.Logger
}

// NewPositionListener builds a listener for the user_position_updates
// channel.
func NewPositionListener(pool *pgxpool.Pool, hub *events.Hub) *PositionListener {
	return &PositionListener{
		pool:   pool,
		hub:    hub,
		logger: log.WithComponent("listener.position"),
	}
}

// Run blocks until ctx is canceled or listen-session establishment
// exhausts its retries.
func (l *PositionListener) Run(ctx context.Context) error {
	return runListenLoop(ctx, l.pool, "user_position_updates", l.logger, l.handleNotification, nil, 0)
}

func (l *PositionListener) handleNotification(payload string) {
	metrics.NotificationsReceivedTotal.WithLabelValues("user_position_updates").Inc()

	var n positionUpdateNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		l.logger.Error().Err(err).Msg("malformed user_position_updates payload")
		return
	}
	l.hub.Publish(n.toOutboundMessage())
}
