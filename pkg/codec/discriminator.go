package codec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Discriminator is the byte tag that prefixes an instruction or event
// payload. Account and plain-instruction discriminators are 8 bytes;
// self-CPI event log discriminators are 16 bytes (an 8-byte "event log"
// prefix, shared by every event, followed by an 8-byte variant tag). Both
// lengths are stored right-padded into a fixed 16-byte array so one map
// can hold both without a union type; Len records the meaningful prefix.
type Discriminator struct {
	Bytes [16]byte
	Len   int
}

// mustDiscriminator parses a "0x"-prefixed hex string into a Discriminator.
// It panics on malformed input because every call site passes a constant
// known at compile time — a typo belongs in a test failure at package
// init, not a runtime error path.
func mustDiscriminator(hexStr string) Discriminator {
	d, err := parseDiscriminator(hexStr)
	if err != nil {
		panic(err)
	}
	return d
}

func parseDiscriminator(hexStr string) (Discriminator, error) {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return Discriminator{}, fmt.Errorf("codec: invalid discriminator %q: %w", hexStr, err)
	}
	if len(raw) != 8 && len(raw) != 16 {
		return Discriminator{}, fmt.Errorf("codec: discriminator %q has %d bytes, want 8 or 16", hexStr, len(raw))
	}
	var d Discriminator
	copy(d.Bytes[:], raw)
	d.Len = len(raw)
	return d, nil
}

// discriminatorOf reads the leading discriminator off data, trying the
// 16-byte event-log form first since it is a strict extension of the
// 8-byte form's prefix space in this registry (no 8-byte key is ever a
// prefix of a registered 16-byte key).
func discriminatorOf(data []byte) (Discriminator, []byte, bool) {
	if len(data) >= 16 {
		var d Discriminator
		copy(d.Bytes[:], data[:16])
		d.Len = 16
		if _, ok := registry[d]; ok {
			return d, data[16:], true
		}
	}
	if len(data) >= 8 {
		var d Discriminator
		copy(d.Bytes[:], data[:8])
		d.Len = 8
		if _, ok := registry[d]; ok {
			return d, data[8:], true
		}
	}
	return Discriminator{}, nil, false
}
