package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/types"
)

// LeveragePositionCreated writes the first state of a leveraged position.
func (h *Handlers) LeveragePositionCreated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.LeveragePositionEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.LeveragePositionCreated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertLeveragePositionCreated(ctx, leverageRow(ev))
}

// LeveragePositionUpdated writes a leveraged position's latest state.
func (h *Handlers) LeveragePositionUpdated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.LeveragePositionEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.LeveragePositionUpdated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertLeveragePositionUpdated(ctx, leverageRow(ev))
}

func leverageRow(ev types.LeveragePositionEvent) store.LeveragePositionRow {
	return store.LeveragePositionRow{
		TransactionSignature: ev.Meta.TxSignature,
		Timestamp:            time.Unix(ev.Meta.Timestamp, 0).UTC(),
		Pair:                 ev.PairID,
		Signer:               ev.Signer,
		PositionID:           ev.PositionID,
		Collateral:           ev.Collateral,
		Debt:                 ev.Debt,
		Leverage:             ev.Leverage,
	}
}
