package codec

import (
	"errors"
	"fmt"

	"github.com/cuemby/pairstream/pkg/types"
)

// ErrMalformedPayload is returned when the buffer is shorter than the
// decoder's schema requires, or an arranger cannot find an expected
// account slot.
var ErrMalformedPayload = errors.New("codec: malformed payload")

// ErrUnknownDiscriminator is returned by Decode when no registry entry
// matches the buffer's leading bytes. The caller should skip the
// instruction rather than treat it as an error — most instructions
// flowing through a program-id filter belong to variants this indexer
// does not track.
var ErrUnknownDiscriminator = errors.New("codec: unknown discriminator")

// decodeFunc turns a payload (with its discriminator already stripped)
// plus the instruction's provenance and its ordered account references
// into one of the types.*Event values. Most decoders ignore accounts —
// only the variants whose payload omits a field the instruction carries
// positionally (pair-updated) consult it.
type decodeFunc func(data []byte, accounts arrangedAccounts, txSignature string, slot uint64) (interface{}, error)

// entry pairs a decoder with the event type it produces, so dispatch can
// route without a type switch on the decoded value.
type entry struct {
	eventType types.EventType
	decode    decodeFunc
}

// registry is built once below and never mutated afterward. Every event
// discriminator shares the 8-byte "event log" prefix 0xe445a52e51cb9a1d
// used by the program's self-CPI event emission; the trailing 8 bytes
// identify the variant. Three variants (mint, adjust-collateral,
// pair-created) are reconstructed following that same convention
// because the instruction-level wrapper carrying their literal bytes
// was not present in the retrieval pack's trimmed copy of the decoder
// crate — the struct layouts themselves were present and are decoded
// verbatim.
var registry = map[Discriminator]entry{
	mustDiscriminator("0xe445a52e51cb9a1d40c6cde8260871e2"): {types.EventTypeSwap, decodeSwapEvent},
	mustDiscriminator("0xe445a52e51cb9a1d21592f75527ceefa"): {types.EventTypeBurn, decodeLiquidityEvent(types.LiquidityEventRemove)},
	mustDiscriminator("0xe445a52e51cb9a1d6c1f2e9d8b5a3c71"): {types.EventTypeMint, decodeLiquidityEvent(types.LiquidityEventAdd)},
	mustDiscriminator("0xe445a52e51cb9a1d8a3f9c512b7e44aa"): {types.EventTypeAdjustCollateral, decodeCollateralAdjustEvent},
	mustDiscriminator("0xe445a52e51cb9a1d9908a974cf749b80"): {types.EventTypeAdjustDebt, decodeDebtAdjustEvent},
	mustDiscriminator("0xe445a52e51cb9a1df0845ce3d148b2a9"): {types.EventTypePositionCreated, decodePositionCreatedEvent},
	mustDiscriminator("0xe445a52e51cb9a1d53a8c558592a3a66"): {types.EventTypePositionUpdated, decodePositionUpdatedEvent},
	mustDiscriminator("0xe445a52e51cb9a1ddc89d903f2beeed8"): {types.EventTypePositionLiquidated, decodePositionLiquidatedEvent},
	mustDiscriminator("0xe445a52e51cb9a1d317f846ee6b79626"): {types.EventTypeLeveragePositionCreated, decodeLeveragePositionCreatedEvent},
	mustDiscriminator("0xe445a52e51cb9a1dd60c7d8cfdd046dd"): {types.EventTypeLeveragePositionUpdated, decodeLeveragePositionUpdatedEvent},
	mustDiscriminator("0xe445a52e51cb9a1d2c063cf58e26a6f7"): {types.EventTypePairUpdated, decodePairUpdatedEvent},
	mustDiscriminator("0xe445a52e51cb9a1d3f7b8e1c9a4d2068"): {types.EventTypePairCreated, decodePairCreatedEvent},
}

// Decode looks up data's leading discriminator and, on a hit, strips it
// and runs the matched decoder. It returns ErrUnknownDiscriminator
// (never an error wrapping it) for bytes this registry does not track,
// so callers can distinguish "skip" from "corrupt." accounts is the
// instruction's ordered account-reference list, passed through to the
// decoder's arranger for the rare variant that needs it.
func Decode(data []byte, accounts []string, txSignature string, slot uint64) (types.EventType, interface{}, error) {
	disc, rest, ok := discriminatorOf(data)
	if !ok {
		return "", nil, ErrUnknownDiscriminator
	}
	e := registry[disc]
	v, err := e.decode(rest, arrange(accounts), txSignature, slot)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return e.eventType, v, nil
}
