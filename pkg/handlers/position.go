package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/types"
)

// PositionCreated appends the first write of a borrow position.
func (h *Handlers) PositionCreated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.PositionCreatedEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.PositionCreated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.InsertPositionCreated(ctx, store.PositionCreatedRow{
		TransactionSignature: ev.Meta.TxSignature,
		Timestamp:            time.Unix(ev.Meta.Timestamp, 0).UTC(),
		Pair:                 ev.PairID,
		Signer:               ev.Signer,
		PositionID:           ev.PositionID,
	})
}

// PositionUpdated writes the append-only event and the latest-state
// row for a borrow position in one transaction.
func (h *Handlers) PositionUpdated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.PositionUpdatedEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.PositionUpdated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertPositionUpdated(ctx, store.PositionUpdatedRow{
		TransactionSignature: ev.Meta.TxSignature,
		Slot:                 ev.Meta.Slot,
		Timestamp:            time.Unix(ev.Meta.Timestamp, 0).UTC(),
		Pair:                 ev.PairID,
		Signer:               ev.Signer,
		PositionID:           ev.PositionID,
		CollateralA:          ev.CollateralA,
		CollateralB:          ev.CollateralB,
		DebtAShares:          ev.DebtAShares,
		DebtBShares:          ev.DebtBShares,
		AppliedMinCfBpsA:     ev.CollateralAAppliedMinCfBp,
		AppliedMinCfBpsB:     ev.CollateralBAppliedMinCfBp,
	})
}

// PositionLiquidated appends the record of a liquidation.
func (h *Handlers) PositionLiquidated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.PositionLiquidatedEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.PositionLiquidated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.InsertPositionLiquidated(ctx, store.PositionLiquidatedRow{
		TransactionSignature:    ev.Meta.TxSignature,
		Timestamp:               time.Unix(ev.Meta.Timestamp, 0).UTC(),
		Pair:                    ev.PairID,
		Signer:                  ev.Signer,
		PositionID:              ev.PositionID,
		Liquidator:              ev.Liquidator,
		CollateralALiquidated:   ev.CollateralALiquidated,
		CollateralBLiquidated:   ev.CollateralBLiquidated,
		DebtALiquidated:         ev.DebtALiquidated,
		DebtBLiquidated:         ev.DebtBLiquidated,
		CollateralPrice:         ev.CollateralPrice,
		Shortfall:               ev.Shortfall,
		LiquidationBonusApplied: ev.LiquidationBonusApplied,
		KA:                      ev.KA,
		KB:                      ev.KB,
	})
}

// LiquidityPositionUpdated writes a signer's latest LP holding for a
// pair through the read-update-else-insert path in pkg/store.
func (h *Handlers) LiquidityPositionUpdated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.LiquidityPositionUpdatedEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.LiquidityPositionUpdated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertLiquidityPositionUpdated(ctx, store.LiquidityPositionRow{
		TransactionSignature: ev.Meta.TxSignature,
		Timestamp:            time.Unix(ev.Meta.Timestamp, 0).UTC(),
		Pair:                 ev.PairID,
		Signer:               ev.Signer,
		AmountA:              fromUint64(ev.AmountA),
		AmountB:              fromUint64(ev.AmountB),
		LPAmount:             fromUint64(ev.LPAmount),
	})
}
