package codec

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/cuemby/pairstream/pkg/types"
)

// eventMetadata mirrors the program's EventMetadata account, embedded at
// the tail of the swap, liquidity, collateral/debt-adjust,
// position-updated and leverage-position events (pair-created,
// pair-updated, position-created and position-liquidated carry their
// fields inline instead).
type eventMetadata struct {
	Signer    solana.PublicKey
	Pair      solana.PublicKey
	Timestamp int64
}

func decodeBorsh(data []byte, v interface{}) error {
	if err := bin.NewBorshDecoder(data).Decode(v); err != nil {
		return fmt.Errorf("codec: borsh decode %T: %w", v, err)
	}
	return nil
}

func metaFrom(m eventMetadata, txSig string, slot uint64) types.Metadata {
	return types.Metadata{
		TxSignature: txSig,
		Slot:        slot,
		BlockTime:   m.Timestamp,
		Timestamp:   m.Timestamp,
	}
}

// rawSwapEvent mirrors the post-fee amount and both reserves followed
// by the trailing EventMetadata, the same nested-metadata shape the
// database writer binds against (pair and signer read off
// swap_event.metadata, not inline fields).
type rawSwapEvent struct {
	IsSideAIn        bool
	AmountIn         uint64
	AmountInAfterFee uint64
	AmountOut        uint64
	ReserveA         uint64
	ReserveB         uint64
	Meta             eventMetadata
}

func decodeSwapEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawSwapEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	afterFee := raw.AmountInAfterFee
	return types.SwapEvent{
		PairID:           raw.Meta.Pair.String(),
		Signer:           raw.Meta.Signer.String(),
		IsSideAIn:        raw.IsSideAIn,
		AmountIn:         raw.AmountIn,
		AmountInAfterFee: &afterFee,
		AmountOut:        raw.AmountOut,
		ReserveA:         raw.ReserveA,
		ReserveB:         raw.ReserveB,
		Meta:             metaFrom(raw.Meta, txSig, slot),
	}, nil
}

type rawLiquidityEvent struct {
	AmountA   uint64
	AmountB   uint64
	Liquidity uint64
	Meta      eventMetadata
}

func decodeLiquidityEvent(kind types.LiquidityEventKind) decodeFunc {
	return func(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
		var raw rawLiquidityEvent
		if err := decodeBorsh(data, &raw); err != nil {
			return nil, err
		}
		return types.LiquidityEvent{
			Kind:      kind,
			PairID:    raw.Meta.Pair.String(),
			Signer:    raw.Meta.Signer.String(),
			AmountA:   raw.AmountA,
			AmountB:   raw.AmountB,
			Liquidity: raw.Liquidity,
			Meta:      metaFrom(raw.Meta, txSig, slot),
		}, nil
	}
}

// rawAdjustEvent matches the current collateral/debt adjustment event
// shape: both amount deltas followed by the trailing EventMetadata the
// database writer binds pair and signer from.
type rawAdjustEvent struct {
	AmountA int64
	AmountB int64
	Meta    eventMetadata
}

func decodeCollateralAdjustEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawAdjustEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.CollateralAdjustEvent{
		PairID:  raw.Meta.Pair.String(),
		Signer:  raw.Meta.Signer.String(),
		AmountA: raw.AmountA,
		AmountB: raw.AmountB,
		Meta:    metaFrom(raw.Meta, txSig, slot),
	}, nil
}

func decodeDebtAdjustEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawAdjustEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.DebtAdjustEvent{
		PairID:  raw.Meta.Pair.String(),
		Signer:  raw.Meta.Signer.String(),
		AmountA: raw.AmountA,
		AmountB: raw.AmountB,
		Meta:    metaFrom(raw.Meta, txSig, slot),
	}, nil
}

type rawPositionCreatedEvent struct {
	Signer    solana.PublicKey
	Pair      solana.PublicKey
	Position  solana.PublicKey
	Timestamp int64
}

func decodePositionCreatedEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawPositionCreatedEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.PositionCreatedEvent{
		PairID:     raw.Pair.String(),
		Signer:     raw.Signer.String(),
		PositionID: raw.Position.String(),
		Meta:       types.Metadata{TxSignature: txSig, Slot: slot, BlockTime: raw.Timestamp, Timestamp: raw.Timestamp},
	}, nil
}

type rawPositionUpdatedEvent struct {
	Position                  solana.PublicKey
	CollateralA               uint64
	CollateralB               uint64
	DebtAShares               uint64
	DebtBShares               uint64
	CollateralAAppliedMinCfBp uint16
	CollateralBAppliedMinCfBp uint16
	Meta                      eventMetadata
}

func decodePositionUpdatedEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawPositionUpdatedEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.PositionUpdatedEvent{
		PairID:                    raw.Meta.Pair.String(),
		Signer:                    raw.Meta.Signer.String(),
		PositionID:                raw.Position.String(),
		CollateralA:               decimalFromUint64(raw.CollateralA),
		CollateralB:               decimalFromUint64(raw.CollateralB),
		DebtAShares:               decimalFromUint64(raw.DebtAShares),
		DebtBShares:               decimalFromUint64(raw.DebtBShares),
		CollateralAAppliedMinCfBp: int32(raw.CollateralAAppliedMinCfBp),
		CollateralBAppliedMinCfBp: int32(raw.CollateralBAppliedMinCfBp),
		Meta:                      metaFrom(raw.Meta, txSig, slot),
	}, nil
}

type rawPositionLiquidatedEvent struct {
	Signer                  solana.PublicKey
	Pair                    solana.PublicKey
	Position                solana.PublicKey
	Liquidator              solana.PublicKey
	CollateralALiquidated   uint64
	CollateralBLiquidated   uint64
	DebtALiquidated         uint64
	DebtBLiquidated         uint64
	CollateralPrice         uint64
	LiquidationBonusApplied uint64
	KA                      bin.Uint128
	KB                      bin.Uint128
	Timestamp               int64
}

func decodePositionLiquidatedEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawPositionLiquidatedEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.PositionLiquidatedEvent{
		PairID:                  raw.Pair.String(),
		Signer:                  raw.Signer.String(),
		PositionID:              raw.Position.String(),
		Liquidator:              raw.Liquidator.String(),
		CollateralALiquidated:   decimalFromUint64(raw.CollateralALiquidated),
		CollateralBLiquidated:   decimalFromUint64(raw.CollateralBLiquidated),
		DebtALiquidated:         decimalFromUint64(raw.DebtALiquidated),
		DebtBLiquidated:         decimalFromUint64(raw.DebtBLiquidated),
		CollateralPrice:         decimalFromUint64(raw.CollateralPrice),
		LiquidationBonusApplied: int32(raw.LiquidationBonusApplied),
		KA:                      decimalFromUint128(raw.KA),
		KB:                      decimalFromUint128(raw.KB),
		Meta:                    types.Metadata{TxSignature: txSig, Slot: slot, BlockTime: raw.Timestamp, Timestamp: raw.Timestamp},
	}, nil
}

type rawLeveragePositionCreatedEvent struct {
	Position solana.PublicKey
	Meta     eventMetadata
}

func decodeLeveragePositionCreatedEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawLeveragePositionCreatedEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.LeveragePositionEvent{
		PairID:     raw.Meta.Pair.String(),
		Signer:     raw.Meta.Signer.String(),
		PositionID: raw.Position.String(),
		Meta:       metaFrom(raw.Meta, txSig, slot),
	}, nil
}

type rawLeveragePositionUpdatedEvent struct {
	Position                        solana.PublicKey
	LongTokenA                      bool
	TargetLeverageBps               uint32
	DebtDelta                       int64
	DebtAmount                      uint64
	CollateralDeposited             uint64
	CollateralDelta                 int64
	CollateralPositionSize          uint64
	CollateralLeverageMultiplierBps uint16
	AppliedCfBps                    uint16
	LiquidationPriceNad             uint64
	EntryPriceNad                   uint64
	Meta                            eventMetadata
}

func decodeLeveragePositionUpdatedEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawLeveragePositionUpdatedEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.LeveragePositionEvent{
		PairID:     raw.Meta.Pair.String(),
		Signer:     raw.Meta.Signer.String(),
		PositionID: raw.Position.String(),
		Debt:       decimalFromUint64(raw.DebtAmount),
		Collateral: decimalFromUint64(raw.CollateralPositionSize),
		Leverage:   int32(raw.TargetLeverageBps),
		Meta:       metaFrom(raw.Meta, txSig, slot),
	}, nil
}

type rawUpdatePairEvent struct {
	PriceAEma uint64
	PriceBEma uint64
	RateA     uint64
	RateB     uint64
	Timestamp int64
}

// decodePairUpdatedEvent is the one variant whose payload omits a field
// the instruction still carries positionally: the pair account is the
// instruction's first account reference, not part of the event bytes.
func decodePairUpdatedEvent(data []byte, accounts arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawUpdatePairEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	pair, ok := accounts.slot(0)
	if !ok {
		return nil, fmt.Errorf("%w: pair-updated event missing account slot 0", ErrMalformedPayload)
	}
	return types.MarketUpdatedEvent{
		PairAddress: pair,
		Meta:        types.Metadata{TxSignature: txSig, Slot: slot, BlockTime: raw.Timestamp, Timestamp: raw.Timestamp},
	}, nil
}

type rawPairCreatedEvent struct {
	TokenA    solana.PublicKey
	TokenB    solana.PublicKey
	Pair      solana.PublicKey
	Timestamp int64
}

func decodePairCreatedEvent(data []byte, _ arrangedAccounts, txSig string, slot uint64) (interface{}, error) {
	var raw rawPairCreatedEvent
	if err := decodeBorsh(data, &raw); err != nil {
		return nil, err
	}
	return types.MarketCreatedEvent{
		PairAddress: raw.Pair.String(),
		TokenA:      raw.TokenA.String(),
		TokenB:      raw.TokenB.String(),
		Meta:        types.Metadata{TxSignature: txSig, Slot: slot, BlockTime: raw.Timestamp, Timestamp: raw.Timestamp},
	}, nil
}
