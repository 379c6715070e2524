package dispatch

import (
	"context"
	"errors"

	"github.com/cuemby/pairstream/pkg/codec"
	"github.com/cuemby/pairstream/pkg/ingest"
	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/metrics"
	"github.com/cuemby/pairstream/pkg/types"
)

// EventHandler processes one decoded event. Implementations are the C4
// per-variant handlers; the decoded value's concrete type matches the
// EventType it was registered under.
type EventHandler func(ctx context.Context, event interface{}) error

// AccountHandler processes one full account snapshot from the GPA
// backfill path. It is optional — a Dispatcher with none set simply
// drops account updates, which is correct for a daemon that only
// subscribes to the live instruction stream.
type AccountHandler func(ctx context.Context, account interface{}, pubkey string, slot uint64) error

// Dispatcher pulls Updates from one ingestion source, decodes each
// instruction through the codec registry, and routes the result to a
// registered handler. One Dispatcher processes updates strictly
// in-order; running more than one concurrently is how the spec allows
// for more throughput, not by parallelizing inside a single instance.
type Dispatcher struct {
	handlers map[types.EventType]EventHandler
	accounts AccountHandler
}

// New returns a Dispatcher with no handlers registered; events with no
// matching handler are counted and dropped.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[types.EventType]EventHandler)}
}

// Register wires h as the handler for every event decoded as t. A
// second call for the same t replaces the first.
func (d *Dispatcher) Register(t types.EventType, h EventHandler) {
	d.handlers[t] = h
}

// RegisterAccountHandler wires h as the sole consumer of AccountUpdate
// values (the GPA backfill path).
func (d *Dispatcher) RegisterAccountHandler(h AccountHandler) {
	d.accounts = h
}

// Run drains updates until the channel closes or ctx is canceled,
// dispatching each one synchronously. It returns nil on a closed
// channel or canceled context, and a non-nil error only when a
// handler reports types.ErrDatastoreTransient — the caller (the
// supervisor) decides whether that warrants a pipeline restart.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan ingest.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if u.Instruction != nil {
				if err := d.handleInstruction(ctx, u.Instruction); err != nil {
					return err
				}
			}
			if u.Account != nil {
				d.handleAccount(ctx, u.Account)
			}
		}
	}
}

func (d *Dispatcher) handleInstruction(ctx context.Context, ix *ingest.InstructionUpdate) error {
	logger := log.WithComponent("dispatch")

	timer := metrics.NewTimer()
	eventType, event, err := codec.Decode(ix.Raw, ix.Accounts, ix.TxSignature, ix.Slot)
	timer.ObserveDuration(metrics.DecodeDuration)

	if errors.Is(err, codec.ErrUnknownDiscriminator) {
		return nil
	}
	if err != nil {
		metrics.DecodeErrorsTotal.WithLabelValues("malformed_payload").Inc()
		logger.Warn().Err(err).Str("tx_signature", ix.TxSignature).Msg("dropping malformed instruction")
		return nil
	}

	metrics.EventsDispatchedTotal.WithLabelValues(string(eventType)).Inc()

	handler, ok := d.handlers[eventType]
	if !ok {
		logger.Debug().Str("event_type", string(eventType)).Msg("no handler registered, skipping")
		return nil
	}

	htimer := metrics.NewTimer()
	herr := handler(ctx, event)
	htimer.ObserveDurationVec(metrics.HandlerDuration, string(eventType))

	if herr == nil {
		return nil
	}
	metrics.HandlerErrorsTotal.WithLabelValues(string(eventType)).Inc()

	if errors.Is(herr, types.ErrDatastoreTransient) {
		return herr
	}
	logger.Warn().Err(herr).Str("event_type", string(eventType)).Str("tx_signature", ix.TxSignature).
		Msg("handler dropped event")
	return nil
}

func (d *Dispatcher) handleAccount(ctx context.Context, acc *ingest.AccountUpdate) {
	if d.accounts == nil {
		return
	}
	logger := log.WithComponent("dispatch")

	decoded, err := codec.DecodeAccount(acc.Data)
	if errors.Is(err, codec.ErrUnknownDiscriminator) {
		return
	}
	if err != nil {
		logger.Warn().Err(err).Str("pubkey", acc.Pubkey).Msg("dropping malformed account snapshot")
		return
	}
	if err := d.accounts(ctx, decoded, acc.Pubkey, acc.Slot); err != nil {
		logger.Warn().Err(err).Str("pubkey", acc.Pubkey).Msg("account handler failed")
	}
}
