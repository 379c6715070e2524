package handlers

import (
	"github.com/cuemby/pairstream/pkg/dispatch"
	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/types"
)

// Handlers wires every decoded event variant to its persistence and
// (for swaps) broadcast side effects.
type Handlers struct {
	store store.Store
	hub   *events.Hub
}

// New creates a Handlers bound to the given store and fan-out hub.
func New(st store.Store, hub *events.Hub) *Handlers {
	return &Handlers{store: st, hub: hub}
}

// Register attaches every handler method to its event type on the
// dispatcher, plus the account-snapshot handler for GPA backfill.
func (h *Handlers) Register(d *dispatch.Dispatcher) {
	d.Register(types.EventTypeSwap, h.Swap)
	d.Register(types.EventTypeMint, h.Liquidity)
	d.Register(types.EventTypeBurn, h.Liquidity)
	d.Register(types.EventTypeAdjustCollateral, h.CollateralAdjust)
	d.Register(types.EventTypeAdjustDebt, h.DebtAdjust)
	d.Register(types.EventTypePositionCreated, h.PositionCreated)
	d.Register(types.EventTypePositionUpdated, h.PositionUpdated)
	d.Register(types.EventTypePositionLiquidated, h.PositionLiquidated)
	d.Register(types.EventTypeLiquidityPositionUpdate, h.LiquidityPositionUpdated)
	d.Register(types.EventTypeLeveragePositionCreated, h.LeveragePositionCreated)
	d.Register(types.EventTypeLeveragePositionUpdated, h.LeveragePositionUpdated)
	d.Register(types.EventTypePairCreated, h.MarketCreated)
	d.Register(types.EventTypePairUpdated, h.MarketUpdated)
	d.RegisterAccountHandler(h.Account)
}
