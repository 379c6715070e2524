// Package types holds the domain entities shared across the indexing
// pipeline: decoded event variants, account metadata, and the outbound
// message shapes broadcast to subscribers.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metadata carries the on-chain provenance of a decoded instruction or event.
type Metadata struct {
	TxSignature string
	Slot        uint64
	BlockTime   int64
	Timestamp   int64
}

// EventType identifies a decoded event variant, used for dispatch routing
// and for logging without reflecting on the concrete Go type.
type EventType string

const (
	EventTypeSwap                    EventType = "swap"
	EventTypeMint                    EventType = "mint"
	EventTypeBurn                    EventType = "burn"
	EventTypeAdjustCollateral        EventType = "adjust_collateral"
	EventTypeAdjustDebt              EventType = "adjust_debt"
	EventTypePairCreated             EventType = "pair_created"
	EventTypePairUpdated             EventType = "pair_updated"
	EventTypePositionCreated         EventType = "position_created"
	EventTypePositionUpdated         EventType = "position_updated"
	EventTypePositionLiquidated      EventType = "position_liquidated"
	EventTypeLiquidityPositionUpdate EventType = "liquidity_position_updated"
	EventTypeLeveragePositionCreated EventType = "leverage_position_created"
	EventTypeLeveragePositionUpdated EventType = "leverage_position_updated"
)

// SwapEvent is emitted when a trade executes against a pair's reserves.
type SwapEvent struct {
	PairID           string
	Signer           string
	IsSideAIn        bool
	AmountIn         uint64
	AmountInAfterFee *uint64 // nil on the older schema that lacks fee tracking
	AmountOut        uint64
	ReserveA         uint64
	ReserveB         uint64
	Meta             Metadata
}

// LiquidityEventKind distinguishes a mint (add) from a burn (remove).
type LiquidityEventKind string

const (
	LiquidityEventAdd    LiquidityEventKind = "add"
	LiquidityEventRemove LiquidityEventKind = "remove"
)

// LiquidityEvent is emitted on a mint or burn against a pair's pool.
type LiquidityEvent struct {
	Kind      LiquidityEventKind
	PairID    string
	Signer    string
	AmountA   uint64
	AmountB   uint64
	Liquidity uint64
	Meta      Metadata
}

// CollateralAdjustEvent records a deposit or withdrawal of collateral.
type CollateralAdjustEvent struct {
	PairID  string
	Signer  string
	AmountA int64
	AmountB int64
	Meta    Metadata
}

// DebtAdjustEvent records a borrow or repay against a position.
type DebtAdjustEvent struct {
	PairID  string
	Signer  string
	AmountA int64
	AmountB int64
	Meta    Metadata
}

// PositionCreatedEvent is the first write of a borrow position.
type PositionCreatedEvent struct {
	PairID     string
	Signer     string
	PositionID string
	Meta       Metadata
}

// PositionUpdatedEvent carries the latest collateral/debt state of a
// borrow position.
type PositionUpdatedEvent struct {
	PairID                    string
	Signer                    string
	PositionID                string
	CollateralA               decimal.Decimal
	CollateralB               decimal.Decimal
	DebtAShares               decimal.Decimal
	DebtBShares               decimal.Decimal
	CollateralAAppliedMinCfBp int32
	CollateralBAppliedMinCfBp int32
	Meta                      Metadata
}

// PositionLiquidatedEvent records a liquidation of a borrow position.
type PositionLiquidatedEvent struct {
	PairID                  string
	Signer                  string
	PositionID              string
	Liquidator              string
	CollateralALiquidated   decimal.Decimal
	CollateralBLiquidated   decimal.Decimal
	DebtALiquidated         decimal.Decimal
	DebtBLiquidated         decimal.Decimal
	CollateralPrice         decimal.Decimal
	Shortfall               decimal.Decimal
	LiquidationBonusApplied int32
	KA                      decimal.Decimal
	KB                      decimal.Decimal
	Meta                    Metadata
}

// LiquidityPositionUpdatedEvent carries the latest LP holdings for a signer
// in a pair.
type LiquidityPositionUpdatedEvent struct {
	PairID   string
	Signer   string
	TokenA   string
	TokenB   string
	LPMint   string
	AmountA  uint64
	AmountB  uint64
	LPAmount uint64
	Meta     Metadata
}

// LeveragePositionEvent covers both creation and update of a leveraged
// position (supplemental to the distilled spec; see SPEC_FULL.md §11/§12).
type LeveragePositionEvent struct {
	PairID     string
	Signer     string
	PositionID string
	Collateral decimal.Decimal
	Debt       decimal.Decimal
	Leverage   int32
	Meta       Metadata
}

// MarketCreatedEvent introduces a new pair to the indexed universe.
type MarketCreatedEvent struct {
	PairAddress string
	TokenA      string
	TokenB      string
	LPMint      string
	RateModel   string
	SwapFeeBps  int32
	HalfLife    int64
	FixedCfBps  int32
	ParamsHash  string
	Version     int32
	Meta        Metadata
}

// MarketUpdatedEvent reconfigures an existing pair's parameters.
type MarketUpdatedEvent struct {
	PairAddress string
	RateModel   string
	SwapFeeBps  int32
	HalfLife    int64
	FixedCfBps  int32
	ParamsHash  string
	Version     int32
	Meta        Metadata
}

// OutboundKind distinguishes the payload carried on an OutboundMessage.
type OutboundKind string

const (
	OutboundKindSwap     OutboundKind = "swap_event"
	OutboundKindPosition OutboundKind = "position_update"
)

// OutboundMessage is the wire-agnostic shape fanned out by the hub (C5) to
// every transport (gRPC, socket hub). Exactly one of the typed payload
// fields is non-nil.
type OutboundMessage struct {
	Kind      OutboundKind
	Swap      *SwapOutbound
	Position  *PositionOutbound
	EmittedAt time.Time
}

// SwapOutbound is the curated, public view of a swap re-broadcast to
// subscribers: just enough to chart price, never raw account data.
type SwapOutbound struct {
	PairID      string
	Price       float64
	Timestamp   int64
	TxSignature string
	VolumeUSD   *float64
}

// PositionOutbound is the curated view of a position-update notification
// re-broadcast from the secondary notify channel.
type PositionOutbound struct {
	PairID      string
	Signer      string
	PositionID  string
	Slot        uint64
	TxSignature string
}

// PairIDKey returns the routing key used by server-side subscriber filters,
// regardless of payload kind.
func (m *OutboundMessage) PairIDKey() string {
	switch m.Kind {
	case OutboundKindSwap:
		if m.Swap != nil {
			return m.Swap.PairID
		}
	case OutboundKindPosition:
		if m.Position != nil {
			return m.Position.PairID
		}
	}
	return ""
}

// SignerKey returns the signer routing key, when the payload carries one.
func (m *OutboundMessage) SignerKey() string {
	if m.Kind == OutboundKindPosition && m.Position != nil {
		return m.Position.Signer
	}
	return ""
}
