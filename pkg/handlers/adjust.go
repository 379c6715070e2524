package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/types"
)

// CollateralAdjust handles a collateral deposit or withdrawal.
func (h *Handlers) CollateralAdjust(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.CollateralAdjustEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.CollateralAdjust got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertCollateralAdjust(ctx, adjustRow(ev.Meta, ev.PairID, ev.Signer, ev.AmountA, ev.AmountB))
}

// DebtAdjust handles a borrow or repayment against a position.
func (h *Handlers) DebtAdjust(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.DebtAdjustEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.DebtAdjust got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertDebtAdjust(ctx, adjustRow(ev.Meta, ev.PairID, ev.Signer, ev.AmountA, ev.AmountB))
}

func adjustRow(meta types.Metadata, pair, signer string, amountA, amountB int64) store.AdjustRow {
	return store.AdjustRow{
		TransactionSignature: meta.TxSignature,
		Slot:                 meta.Slot,
		EventTimestamp:       time.Unix(meta.Timestamp, 0).UTC(),
		Pair:                 pair,
		Signer:               signer,
		AmountA:              decimal.NewFromInt(amountA),
		AmountB:              decimal.NewFromInt(amountB),
	}
}
