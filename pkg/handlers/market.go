package handlers

import (
	"context"
	"fmt"

	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/types"
)

// MarketCreated writes a new pair's initial configuration.
func (h *Handlers) MarketCreated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.MarketCreatedEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.MarketCreated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertMarketCreated(ctx, store.MarketRow{
		PairAddress: ev.PairAddress,
		TokenA:      ev.TokenA,
		TokenB:      ev.TokenB,
		LPMint:      ev.LPMint,
		RateModel:   ev.RateModel,
		SwapFeeBps:  ev.SwapFeeBps,
		HalfLife:    ev.HalfLife,
		FixedCfBps:  ev.FixedCfBps,
		ParamsHash:  ev.ParamsHash,
		Version:     ev.Version,
	})
}

// MarketUpdated reconfigures an existing pair's parameters.
func (h *Handlers) MarketUpdated(ctx context.Context, event interface{}) error {
	ev, ok := event.(types.MarketUpdatedEvent)
	if !ok {
		return fmt.Errorf("%w: handlers.MarketUpdated got %T", types.ErrMalformedEvent, event)
	}
	return h.store.UpsertMarketUpdated(ctx, store.MarketRow{
		PairAddress: ev.PairAddress,
		RateModel:   ev.RateModel,
		SwapFeeBps:  ev.SwapFeeBps,
		HalfLife:    ev.HalfLife,
		FixedCfBps:  ev.FixedCfBps,
		ParamsHash:  ev.ParamsHash,
		Version:     ev.Version,
	})
}
