package listener

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// establishSession acquires a dedicated pool connection and issues
// LISTEN on channel, retrying up to 5 times with a doubling backoff
// (1s, capped at 30s) before giving up. The returned connection must
// be released by the caller.
func establishSession(ctx context.Context, pool *pgxpool.Pool, channel string, logger zerolog.Logger) (*pgxpool.Conn, error) {
	var conn *pgxpool.Conn

	operation := func() error {
		c, err := pool.Acquire(ctx)
		if err != nil {
			return err
		}
		if _, err := c.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			c.Release()
			return err
		}
		conn = c
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.Multiplier = 2
	eb.MaxInterval = 30 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, 5), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("backoff", wait).Str("channel", channel).
			Msg("listen session establishment failed, retrying")
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// recvNotifications pulls notifications off conn until WaitForNotification
// errors or ctx is canceled, reporting the terminal error (if any) on errCh.
func recvNotifications(ctx context.Context, conn *pgxpool.Conn, notifyCh chan<- *pgconn.Notification, errCh chan<- error) {
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}
		select {
		case notifyCh <- n:
		case <-ctx.Done():
			return
		}
	}
}

// runListenLoop owns one channel's listen session end-to-end: initial
// establishment, the notify/tick select loop, and reconnect-after-5s on a
// receive error. onTick is optional — the position-update listener has no
// periodic sweep.
func runListenLoop(ctx context.Context, pool *pgxpool.Pool, channel string, logger zerolog.Logger, onNotify func(payload string), onTick func(), tick time.Duration) error {
	conn, err := establishSession(ctx, pool, channel, logger)
	if err != nil {
		return err
	}
	defer conn.Release()

	var tickC <-chan time.Time
	if onTick != nil {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		tickC = ticker.C
	}

	notifyCh := make(chan *pgconn.Notification)
	errCh := make(chan error, 1)
	go recvNotifications(ctx, conn, notifyCh, errCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tickC:
			onTick()
		case n := <-notifyCh:
			onNotify(n.Payload)
		case recvErr := <-errCh:
			logger.Warn().Err(recvErr).Str("channel", channel).Msg("listen session lost, reconnecting")
			metrics.ListenerReconnectsTotal.WithLabelValues(channel).Inc()
			conn.Release()

			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return nil
			}

			conn, err = establishSession(ctx, pool, channel, logger)
			if err != nil {
				return err
			}
			go recvNotifications(ctx, conn, notifyCh, errCh)
		}
	}
}
