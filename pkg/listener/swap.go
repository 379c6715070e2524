package listener

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/metrics"
	"github.com/cuemby/pairstream/pkg/types"
)

// hardCapEntries bounds the dedup buffer independent of the timeout
// sweep, so a burst of inserts with no matching update can't grow the
// buffer without limit.
const hardCapEntries = 10000

type bufferedSwap struct {
	txSignature string
	msg         types.OutboundMessage
	insertedAt  time.Time
}

// SwapListener holds swap_updates INSERT notifications until their
// enriched UPDATE counterpart arrives (or they time out), then
// publishes one OutboundMessage for the pair onto the hub. An UPDATE
// that arrives after its INSERT timed out is published as well.
type SwapListener struct {
	pool         *pgxpool.Pool
	hub          *events.Hub
	dedupTimeout time.Duration
	tick         time.Duration
	logger       zerolog.Logger

	mu     sync.Mutex
	buffer map[string]bufferedSwap
}

// NewSwapListener builds a listener for the swap_updates channel.
// dedupTimeout and tick come from DEDUP_TIMEOUT_SECS / DEDUP_TICK_SECS.
func NewSwapListener(pool *pgxpool.Pool, hub *events.Hub, dedupTimeout, tick time.Duration) *SwapListener {
	return &SwapListener{
		pool:         pool,
		hub:          hub,
		dedupTimeout: dedupTimeout,
		tick:         tick,
		logger:       log.WithComponent("listener.swap"),
		buffer:       make(map[string]bufferedSwap),
	}
}

// Run blocks until ctx is canceled or listen-session establishment
// exhausts its retries.
func (l *SwapListener) Run(ctx context.Context) error {
	return runListenLoop(ctx, l.pool, "swap_updates", l.logger, l.handleNotification, l.sweep, l.tick)
}

func (l *SwapListener) handleNotification(payload string) {
	metrics.NotificationsReceivedTotal.WithLabelValues("swap_updates").Inc()

	var n swapNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		l.logger.Error().Err(err).Msg("malformed swap_updates payload")
		return
	}
	msg, err := n.toOutboundMessage()
	if err != nil {
		l.logger.Error().Err(err).Str("tx_signature", n.TxSignature).Msg("invalid swap_updates payload")
		return
	}

	switch strings.ToUpper(n.Op) {
	case "INSERT":
		l.bufferInsert(n.TxSignature, msg)
	case "UPDATE":
		l.mu.Lock()
		_, wasBuffered := l.buffer[n.TxSignature]
		delete(l.buffer, n.TxSignature)
		metrics.DedupBufferSize.Set(float64(len(l.buffer)))
		l.mu.Unlock()
		if wasBuffered {
			metrics.DedupHitsTotal.Inc()
		}
		l.hub.Publish(msg)
	default:
		// op absent or unrecognized: backward-compat path, emit as-is.
		l.mu.Lock()
		delete(l.buffer, n.TxSignature)
		metrics.DedupBufferSize.Set(float64(len(l.buffer)))
		l.mu.Unlock()
		l.hub.Publish(msg)
	}
}

func (l *SwapListener) bufferInsert(txSignature string, msg types.OutboundMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buffer[txSignature] = bufferedSwap{txSignature: txSignature, msg: msg, insertedAt: time.Now()}
	metrics.DedupBufferSize.Set(float64(len(l.buffer)))

	if len(l.buffer) <= hardCapEntries {
		return
	}

	oldest, found := l.oldestLocked()
	if !found {
		return
	}
	delete(l.buffer, oldest.txSignature)
	metrics.DedupEvictionsTotal.Inc()
	metrics.DedupBufferSize.Set(float64(len(l.buffer)))
	l.logger.Warn().Str("tx_signature", oldest.txSignature).Msg("dedup buffer exceeded hard cap, evicting oldest entry")
	l.hub.Publish(withoutVolumeUSD(oldest.msg))
}

// sweep evicts and emits every buffered entry older than dedupTimeout.
// Called from the select loop's tick arm, never concurrently with
// itself, but still serialized against handleNotification via mu.
func (l *SwapListener) sweep() {
	cutoff := time.Now().Add(-l.dedupTimeout)

	l.mu.Lock()
	var timedOut []bufferedSwap
	for sig, b := range l.buffer {
		if b.insertedAt.Before(cutoff) {
			timedOut = append(timedOut, b)
			delete(l.buffer, sig)
		}
	}
	metrics.DedupBufferSize.Set(float64(len(l.buffer)))
	l.mu.Unlock()

	for _, b := range timedOut {
		l.logger.Warn().Str("tx_signature", b.txSignature).Msg("dedup entry timed out waiting for enriched update")
		l.hub.Publish(withoutVolumeUSD(b.msg))
	}
}

func (l *SwapListener) oldestLocked() (bufferedSwap, bool) {
	var oldest bufferedSwap
	found := false
	for _, b := range l.buffer {
		if !found || b.insertedAt.Before(oldest.insertedAt) {
			oldest = b
			found = true
		}
	}
	return oldest, found
}

// withoutVolumeUSD clears the enrichment field before a timed-out or
// hard-cap-evicted entry goes out, in case the trigger ever starts
// populating it on INSERT.
func withoutVolumeUSD(msg types.OutboundMessage) types.OutboundMessage {
	if msg.Swap != nil {
		clone := *msg.Swap
		clone.VolumeUSD = nil
		msg.Swap = &clone
	}
	return msg
}
