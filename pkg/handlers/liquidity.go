package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/types"
)

// Liquidity handles both the mint and burn variants, distinguished by
// ev.Kind.
func (h *Handlers) Liquidity(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.LiquidityEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.Liquidity got %T", types.ErrMalformedEvent, event)
	}

	eventType := "add"
	if ev.Kind == types.LiquidityEventRemove {
		eventType = "remove"
	}

	return h.store.UpsertLiquidity(ctx, store.LiquidityRow{
		TxSignature: ev.Meta.TxSignature,
		Timestamp:   time.Unix(ev.Meta.Timestamp, 0).UTC(),
		EventType:   eventType,
		Pair:        ev.PairID,
		Signer:      ev.Signer,
		AmountA:     fromUint64(ev.AmountA),
		AmountB:     fromUint64(ev.AmountB),
		Liquidity:   fromUint64(ev.Liquidity),
	})
}
