package codec

import "testing"

// TestParseDiscriminatorHex verifies both the 8-byte and 16-byte forms
// round-trip through a "0x"-prefixed hex string.
func TestParseDiscriminatorHex(t *testing.T) {
	d, err := parseDiscriminator("0xe445a52e51cb9a1d40c6cde8260871e2")
	if err != nil {
		t.Fatalf("parseDiscriminator: %v", err)
	}
	if d.Len != 16 {
		t.Errorf("Len = %d, want 16", d.Len)
	}
	if d.Bytes[0] != 0xe4 || d.Bytes[15] != 0xe2 {
		t.Errorf("unexpected bytes: %x", d.Bytes)
	}

	d8, err := parseDiscriminator("554831b0b6e48d52")
	if err != nil {
		t.Fatalf("parseDiscriminator (no 0x prefix): %v", err)
	}
	if d8.Len != 8 {
		t.Errorf("Len = %d, want 8", d8.Len)
	}
}

// TestParseDiscriminatorRejectsBadLength makes sure a buffer that is
// neither 8 nor 16 bytes is rejected rather than silently truncated.
func TestParseDiscriminatorRejectsBadLength(t *testing.T) {
	if _, err := parseDiscriminator("0xaabb"); err == nil {
		t.Fatal("expected error for a 2-byte discriminator, got nil")
	}
}

// TestMustDiscriminatorPanicsOnBadInput guards the compile-time-literal
// contract: mustDiscriminator is only ever called with constants, so a
// malformed one should panic loudly rather than produce a zero value
// that would silently collide with another registry entry.
func TestMustDiscriminatorPanicsOnBadInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for malformed discriminator literal")
		}
	}()
	mustDiscriminator("not-hex")
}

// TestDiscriminatorOfPrefersSixteenByteForm exercises the lookup order:
// discriminatorOf must try the 16-byte event-log prefix first, since an
// 8-byte match would otherwise shadow it for every registered event.
func TestDiscriminatorOfPrefersSixteenByteForm(t *testing.T) {
	data := append([]byte{
		0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d,
		0x40, 0xc6, 0xcd, 0xe8, 0x26, 0x08, 0x71, 0xe2,
	}, []byte{1, 2, 3}...)

	disc, rest, ok := discriminatorOf(data)
	if !ok {
		t.Fatal("discriminatorOf: no match")
	}
	if disc.Len != 16 {
		t.Errorf("matched Len = %d, want 16", disc.Len)
	}
	if len(rest) != 3 {
		t.Errorf("rest len = %d, want 3", len(rest))
	}
}

// TestDiscriminatorOfUnknown returns ok=false for bytes that match
// nothing registered, rather than guessing a fallback length.
func TestDiscriminatorOfUnknown(t *testing.T) {
	_, _, ok := discriminatorOf([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	if ok {
		t.Fatal("expected no match for an all-zero buffer")
	}
}
