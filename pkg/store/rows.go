package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// SwapRow is the fully computed record the swap handler persists —
// the raw event fields plus the fee/price values it derives from them.
type SwapRow struct {
	TxSignature string
	Timestamp   time.Time
	Pair        string
	Signer      string
	IsSideAIn   bool
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	ReserveA    decimal.Decimal
	ReserveB    decimal.Decimal
	FeePaidA    decimal.Decimal
	FeePaidB    decimal.Decimal
	Price       float64
	VolumeUSD   *float64
}

// LiquidityRow backs both the mint and burn variants of adjust_liquidity.
type LiquidityRow struct {
	TxSignature string
	Timestamp   time.Time
	EventType   string // "add" or "remove"
	Pair        string
	Signer      string
	AmountA     decimal.Decimal
	AmountB     decimal.Decimal
	Liquidity   decimal.Decimal
}

// AdjustRow backs adjust_collateral_events and adjust_debt_events,
// which share a column shape and are both keyed by transaction signature.
type AdjustRow struct {
	TransactionSignature string
	Slot                 uint64
	EventTimestamp       time.Time
	Pair                 string
	Signer               string
	AmountA              decimal.Decimal
	AmountB              decimal.Decimal
}

// PositionCreatedRow is the append-only record of a borrow position's
// first write, into user_position_created_events.
type PositionCreatedRow struct {
	TransactionSignature string
	Timestamp            time.Time
	Pair                 string
	Signer               string
	PositionID           string
}

// PositionUpdatedRow carries a borrow position's latest collateral/debt
// state, written both into user_position_updated_events (append-only)
// and user_borrow_positions (latest, keyed by pair+signer).
type PositionUpdatedRow struct {
	TransactionSignature string
	Slot                 uint64
	Timestamp            time.Time
	Pair                 string
	Signer               string
	PositionID           string
	CollateralA          decimal.Decimal
	CollateralB          decimal.Decimal
	DebtAShares          decimal.Decimal
	DebtBShares          decimal.Decimal
	AppliedMinCfBpsA     int32
	AppliedMinCfBpsB     int32
}

// PositionLiquidatedRow is the append-only record of a liquidation,
// into user_position_liquidated_events.
type PositionLiquidatedRow struct {
	TransactionSignature    string
	Timestamp               time.Time
	Pair                    string
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
}

// LiquidityPositionRow carries a signer's latest LP holdings for a
// pair, written into user_liquidity_positions (no unique constraint —
// see the read-update-else-insert logic in position.go) and the
// append-only user_lp_position_updated_events.
type LiquidityPositionRow struct {
	TransactionSignature string
	Timestamp            time.Time
	Pair                 string
	Signer               string
	AmountA              decimal.Decimal
	AmountB              decimal.Decimal
	LPAmount             decimal.Decimal
}

// LeveragePositionRow backs both leverage_position_created_events and
// leverage_position_updated_events.
type LeveragePositionRow struct {
	TransactionSignature string
	Timestamp            time.Time
	Pair                 string
	Signer               string
	PositionID           string
	Collateral           decimal.Decimal
	Debt                 decimal.Decimal
	Leverage             int32
}

// MarketRow backs the markets relation, shared by pair-created and
// pair-updated events.
type MarketRow struct {
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
}
