package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/pairstream/pkg/codec"
	"github.com/cuemby/pairstream/pkg/store"
)

// Account persists a decoded GPA backfill account snapshot. It fills
// in state for pairs and leveraged positions the live stream hasn't
// touched since the process started. Pair snapshots are written with
// version 1, and the markets upsert only overwrites a stored row whose
// version is 1 or lower; leveraged-position snapshots get their own
// row keyed by "backfill:"+pubkey. No slot comparison is made.
func (h *Handlers) Account(ctx context.Context, account interface{}, pubkey string, slot uint64) error {
	switch v := account.(type) {
	case codec.PairAccount:
		return h.store.UpsertMarketCreated(ctx, store.MarketRow{
			PairAddress: pubkey,
			TokenA:      v.TokenA.String(),
			TokenB:      v.TokenB.String(),
			RateModel:   v.RateModel.String(),
			SwapFeeBps:  int32(v.SwapFeeBps),
			HalfLife:    int64(v.HalfLife),
			Version:     1,
		})
	case codec.LeveragedPositionAccount:
		return h.store.UpsertLeveragePositionCreated(ctx, store.LeveragePositionRow{
			TransactionSignature: "backfill:" + pubkey,
			Timestamp:            time.Now().UTC(),
			Pair:                 v.Pair.String(),
			Signer:               v.Owner.String(),
			PositionID:           pubkey,
			Collateral:           fromUint64(v.CollateralA),
			Debt:                 fromUint64(v.DebtAShares),
			Leverage:             int32(v.TokenAMultiplier),
		})
	default:
		return fmt.Errorf("handlers: Account got unhandled type %T", account)
	}
}
