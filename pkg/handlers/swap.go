package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/types"
)

// Swap computes the derived fee and price fields for a swap, upserts
// the row, and publishes the curated view to the fan-out hub.
func (h *Handlers) Swap(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.SwapEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.Swap got %T", types.ErrMalformedEvent, event)
	}

	amountIn := fromUint64(ev.AmountIn)
	reserveA := fromUint64(ev.ReserveA)
	reserveB := fromUint64(ev.ReserveB)

	// fee_total = amount_in - amount_in_after_fee; the older schema
	// that lacks amount_in_after_fee treats the whole input as fee
	// rather than defaulting to zero fee.
	var feeTotal decimal.Decimal
	if ev.AmountInAfterFee != nil {
		feeTotal = amountIn.Sub(fromUint64(*ev.AmountInAfterFee))
	} else {
		feeTotal = amountIn
	}

	feePaidA, feePaidB := crossSideFee(feeTotal, ev.IsSideAIn, reserveA, reserveB)
	price := swapPrice(reserveA, reserveB)

	row := store.SwapRow{
		TxSignature: ev.Meta.TxSignature,
		Timestamp:   time.Unix(ev.Meta.Timestamp, 0).UTC(),
		Pair:        ev.PairID,
		Signer:      ev.Signer,
		IsSideAIn:   ev.IsSideAIn,
		AmountIn:    amountIn,
		AmountOut:   fromUint64(ev.AmountOut),
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		FeePaidA:    feePaidA,
		FeePaidB:    feePaidB,
		Price:       price,
	}

	if err := h.store.UpsertSwap(ctx, row); err != nil {
		return err
	}

	h.hub.Publish(types.OutboundMessage{
		Kind: types.OutboundKindSwap,
		Swap: &types.SwapOutbound{
			PairID:      ev.PairID,
			Price:       price,
			Timestamp:   ev.Meta.Timestamp,
			TxSignature: ev.Meta.TxSignature,
		},
		EmittedAt: time.Now(),
	})
	return nil
}

// crossSideFee splits a swap's total fee across both reserves: the
// input side pays the fee directly, the output side's share is
// derived from the reserve ratio. The output side's share is zero
// when either reserve is zero, since the ratio is undefined.
func crossSideFee(feeTotal decimal.Decimal, isSideAIn bool, reserveA, reserveB decimal.Decimal) (feePaidA, feePaidB decimal.Decimal) {
	if isSideAIn {
		feePaidA = feeTotal
		if reserveA.IsZero() || reserveB.IsZero() {
			feePaidB = decimal.Zero
		} else {
			feePaidB = feeTotal.Mul(reserveB).Div(reserveA).Round(0)
		}
		return
	}
	feePaidB = feeTotal
	if reserveA.IsZero() || reserveB.IsZero() {
		feePaidA = decimal.Zero
	} else {
		feePaidA = feeTotal.Mul(reserveA).Div(reserveB).Round(0)
	}
	return
}

// swapPrice computes reserve_b / reserve_a as a 32-bit float, widened
// back to float64 only for storage; it is 0 when reserve_a is zero.
func swapPrice(reserveA, reserveB decimal.Decimal) float64 {
	if reserveA.IsZero() {
		return 0.0
	}
	ratio, _ := reserveB.Div(reserveA).Float64()
	return float64(float32(ratio))
}
