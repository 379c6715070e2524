package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/cuemby/pairstream/pkg/types"
)

func encodeBorsh(t *testing.T, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode %T: %v", v, err)
	}
	return buf.Bytes()
}

// wireBuilder hand-assembles Borsh bytes field by field, independent of
// any rawXxxEvent struct's field order, so a fixture built with it
// catches a regression in that struct's layout instead of merely
// round-tripping through it.
type wireBuilder struct {
	buf bytes.Buffer
}

func (w *wireBuilder) bool(v bool) *wireBuilder {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
	return w
}

func (w *wireBuilder) u64(v uint64) *wireBuilder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
	return w
}

func (w *wireBuilder) i64(v int64) *wireBuilder {
	return w.u64(uint64(v))
}

func (w *wireBuilder) pubkey(k solana.PublicKey) *wireBuilder {
	w.buf.Write(k[:])
	return w
}

// metadata appends signer, pair, then timestamp, matching the
// EventMetadata field-access order database.rs binds against
// (metadata.pair, metadata.signer) with timestamp trailing.
func (w *wireBuilder) metadata(signer, pair solana.PublicKey, timestamp int64) *wireBuilder {
	return w.pubkey(signer).pubkey(pair).i64(timestamp)
}

func (w *wireBuilder) bytes() []byte {
	return w.buf.Bytes()
}

// TestDecodeSwapEvent round-trips a swap payload through the real
// registry entry, including the discriminator prefix, and checks the
// fields a handler actually reads.
func TestDecodeSwapEvent(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	pair := solana.NewWallet().PublicKey()

	raw := rawSwapEvent{
		IsSideAIn:        true,
		AmountIn:         1_000_000,
		AmountInAfterFee: 997_000,
		AmountOut:        42_000,
		ReserveA:         10_000_000,
		ReserveB:         20_000_000,
		Meta:             eventMetadata{Signer: signer, Pair: pair, Timestamp: 1_700_000_000},
	}
	body := encodeBorsh(t, raw)
	disc := mustDiscriminator("0xe445a52e51cb9a1d40c6cde8260871e2")
	data := append(append([]byte{}, disc.Bytes[:16]...), body...)

	eventType, decoded, err := Decode(data, nil, "sig123", 55)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if eventType != types.EventTypeSwap {
		t.Fatalf("eventType = %q, want %q", eventType, types.EventTypeSwap)
	}
	ev, ok := decoded.(types.SwapEvent)
	if !ok {
		t.Fatalf("decoded type = %T, want types.SwapEvent", decoded)
	}
	if ev.PairID != pair.String() || ev.Signer != signer.String() {
		t.Errorf("PairID/Signer mismatch: got %+v", ev)
	}
	if ev.AmountIn != raw.AmountIn || ev.AmountOut != raw.AmountOut {
		t.Errorf("amount mismatch: got %+v", ev)
	}
	if ev.AmountInAfterFee == nil || *ev.AmountInAfterFee != raw.AmountInAfterFee {
		t.Errorf("AmountInAfterFee = %v, want %d", ev.AmountInAfterFee, raw.AmountInAfterFee)
	}
	if ev.Meta.TxSignature != "sig123" || ev.Meta.Slot != 55 {
		t.Errorf("Meta mismatch: got %+v", ev.Meta)
	}
}

// TestDecodePairUpdatedEventUsesAccountSlot confirms the one variant
// whose pair address comes from the instruction's account list, not its
// own payload bytes.
func TestDecodePairUpdatedEventUsesAccountSlot(t *testing.T) {
	pair := solana.NewWallet().PublicKey().String()
	raw := rawUpdatePairEvent{
		PriceAEma: 123,
		PriceBEma: 456,
		RateA:     1,
		RateB:     2,
		Timestamp: 1_700_000_001,
	}
	body := encodeBorsh(t, raw)
	disc := mustDiscriminator("0xe445a52e51cb9a1d2c063cf58e26a6f7")
	data := append(append([]byte{}, disc.Bytes[:16]...), body...)

	eventType, decoded, err := Decode(data, []string{pair, "someOtherAccount"}, "sigabc", 99)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if eventType != types.EventTypePairUpdated {
		t.Fatalf("eventType = %q, want %q", eventType, types.EventTypePairUpdated)
	}
	ev, ok := decoded.(types.MarketUpdatedEvent)
	if !ok {
		t.Fatalf("decoded type = %T, want types.MarketUpdatedEvent", decoded)
	}
	if ev.PairAddress != pair {
		t.Errorf("PairAddress = %q, want %q", ev.PairAddress, pair)
	}
}

// TestDecodePairUpdatedEventMissingAccountSlot checks the arranger's
// failure path: no account slot means ErrMalformedPayload, not a decode
// of an empty string as if it were a real address.
func TestDecodePairUpdatedEventMissingAccountSlot(t *testing.T) {
	raw := rawUpdatePairEvent{Timestamp: 1}
	body := encodeBorsh(t, raw)
	disc := mustDiscriminator("0xe445a52e51cb9a1d2c063cf58e26a6f7")
	data := append(append([]byte{}, disc.Bytes[:16]...), body...)

	_, _, err := Decode(data, nil, "sig", 1)
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want wrapping ErrMalformedPayload", err)
	}
}

// TestDecodeUnknownDiscriminator makes sure instructions outside the
// registry are reported as skippable rather than corrupt.
func TestDecodeUnknownDiscriminator(t *testing.T) {
	_, _, err := Decode(bytes.Repeat([]byte{0xff}, 16), nil, "sig", 1)
	if !errors.Is(err, ErrUnknownDiscriminator) {
		t.Fatalf("err = %v, want ErrUnknownDiscriminator", err)
	}
}

// TestDecodeLiquidityEventDistinguishesMintAndBurn verifies the closure
// factory wires each discriminator to its own Kind rather than sharing
// mutable state between the two registry entries.
func TestDecodeLiquidityEventDistinguishesMintAndBurn(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	pair := solana.NewWallet().PublicKey()
	raw := rawLiquidityEvent{
		AmountA:   10,
		AmountB:   20,
		Liquidity: 30,
		Meta:      eventMetadata{Signer: signer, Pair: pair, Timestamp: 5},
	}
	body := encodeBorsh(t, raw)

	mintDisc := mustDiscriminator("0xe445a52e51cb9a1d6c1f2e9d8b5a3c71")
	mintData := append(append([]byte{}, mintDisc.Bytes[:16]...), body...)
	_, decoded, err := Decode(mintData, nil, "sig", 1)
	if err != nil {
		t.Fatalf("Decode (mint): %v", err)
	}
	if decoded.(types.LiquidityEvent).Kind != types.LiquidityEventAdd {
		t.Errorf("mint discriminator decoded as %v, want add", decoded.(types.LiquidityEvent).Kind)
	}

	burnDisc := mustDiscriminator("0xe445a52e51cb9a1d21592f75527ceefa")
	burnData := append(append([]byte{}, burnDisc.Bytes[:16]...), body...)
	_, decoded, err = Decode(burnData, nil, "sig", 1)
	if err != nil {
		t.Fatalf("Decode (burn): %v", err)
	}
	if decoded.(types.LiquidityEvent).Kind != types.LiquidityEventRemove {
		t.Errorf("burn discriminator decoded as %v, want remove", decoded.(types.LiquidityEvent).Kind)
	}
}

// TestDecodeSwapEventWireLayout hand-assembles the payload bytes in the
// field order the database writer actually reads
// (is_side_a_in, amount_in, amount_in_after_fee, amount_out, reserve_a,
// reserve_b, then metadata.signer/metadata.pair/timestamp) instead of
// Borsh-encoding a rawSwapEvent literal, so a future reordering of that
// struct's fields is caught here even if the struct's own round trip
// still passes.
func TestDecodeSwapEventWireLayout(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	pair := solana.NewWallet().PublicKey()

	body := (&wireBuilder{}).
		bool(true).
		u64(1_000_000).
		u64(997_000).
		u64(42_000).
		u64(10_000_000).
		u64(20_000_000).
		metadata(signer, pair, 1_700_000_000).
		bytes()
	disc := mustDiscriminator("0xe445a52e51cb9a1d40c6cde8260871e2")
	data := append(append([]byte{}, disc.Bytes[:16]...), body...)

	_, decoded, err := Decode(data, nil, "sig123", 55)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ev, ok := decoded.(types.SwapEvent)
	if !ok {
		t.Fatalf("decoded type = %T, want types.SwapEvent", decoded)
	}
	if ev.PairID != pair.String() {
		t.Errorf("PairID = %q, want %q", ev.PairID, pair.String())
	}
	if ev.Signer != signer.String() {
		t.Errorf("Signer = %q, want %q", ev.Signer, signer.String())
	}
	if ev.AmountIn != 1_000_000 || ev.AmountOut != 42_000 {
		t.Errorf("amount mismatch: got %+v", ev)
	}
	if ev.AmountInAfterFee == nil || *ev.AmountInAfterFee != 997_000 {
		t.Errorf("AmountInAfterFee = %v, want 997000", ev.AmountInAfterFee)
	}
	if ev.ReserveA != 10_000_000 || ev.ReserveB != 20_000_000 {
		t.Errorf("reserve mismatch: got %+v", ev)
	}
	if ev.Meta.Timestamp != 1_700_000_000 {
		t.Errorf("Meta.Timestamp = %d, want 1700000000", ev.Meta.Timestamp)
	}
}

// TestDecodeCollateralAdjustEventWireLayout hand-assembles
// amount_a/amount_b followed by metadata, matching
// database.rs's collateral-adjust handler field access order, to catch
// a regression in rawAdjustEvent's field order.
func TestDecodeCollateralAdjustEventWireLayout(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	pair := solana.NewWallet().PublicKey()

	body := (&wireBuilder{}).
		i64(1_500).
		i64(-250).
		metadata(signer, pair, 1_700_000_100).
		bytes()
	disc := mustDiscriminator("0xe445a52e51cb9a1d8a3f9c512b7e44aa")
	data := append(append([]byte{}, disc.Bytes[:16]...), body...)

	_, decoded, err := Decode(data, nil, "sig", 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ev, ok := decoded.(types.CollateralAdjustEvent)
	if !ok {
		t.Fatalf("decoded type = %T, want types.CollateralAdjustEvent", decoded)
	}
	if ev.PairID != pair.String() || ev.Signer != signer.String() {
		t.Errorf("PairID/Signer mismatch: got %+v", ev)
	}
	if ev.AmountA != 1_500 || ev.AmountB != -250 {
		t.Errorf("amount mismatch: got %+v", ev)
	}
}

// TestDecodeDebtAdjustEventWireLayout mirrors
// TestDecodeCollateralAdjustEventWireLayout for the debt-adjust
// handler, which shares the same rawAdjustEvent layout per
// database.rs.
func TestDecodeDebtAdjustEventWireLayout(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	pair := solana.NewWallet().PublicKey()

	body := (&wireBuilder{}).
		i64(-800).
		i64(3_200).
		metadata(signer, pair, 1_700_000_200).
		bytes()
	disc := mustDiscriminator("0xe445a52e51cb9a1d9908a974cf749b80")
	data := append(append([]byte{}, disc.Bytes[:16]...), body...)

	_, decoded, err := Decode(data, nil, "sig", 3)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ev, ok := decoded.(types.DebtAdjustEvent)
	if !ok {
		t.Fatalf("decoded type = %T, want types.DebtAdjustEvent", decoded)
	}
	if ev.PairID != pair.String() || ev.Signer != signer.String() {
		t.Errorf("PairID/Signer mismatch: got %+v", ev)
	}
	if ev.AmountA != -800 || ev.AmountB != 3_200 {
		t.Errorf("amount mismatch: got %+v", ev)
	}
}
