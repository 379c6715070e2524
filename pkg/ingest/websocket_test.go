package ingest

import (
	"encoding/base64"
	"testing"
)

// TestDecodeFrameInstructionsSkipsBadBase64 ensures one malformed
// instruction in a frame does not take down the other, well-formed
// ones in the same transaction.
func TestDecodeFrameInstructionsSkipsBadBase64(t *testing.T) {
	good := base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4})
	var frame transactionFrame
	frame.Params.Result.Signature = "sig1"
	frame.Params.Result.Slot = 42
	frame.Params.Result.BlockTime = 1700000000
	frame.Params.Result.Instructions = []struct {
		Data     string   `json:"data"`
		Accounts []string `json:"accounts"`
	}{
		{Data: "not-valid-base64!!", Accounts: []string{"a"}},
		{Data: good, Accounts: []string{"b", "c"}},
	}

	updates := decodeFrameInstructions(frame)
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	if updates[0].TxSignature != "sig1" || updates[0].Slot != 42 {
		t.Errorf("provenance not propagated: %+v", updates[0])
	}
	if len(updates[0].Accounts) != 2 {
		t.Errorf("accounts = %v, want 2 entries", updates[0].Accounts)
	}
}

// TestDialURLAppendsAPIKey confirms the api key is attached as a query
// parameter rather than folded into the path or dropped silently.
func TestDialURLAppendsAPIKey(t *testing.T) {
	s := NewWebsocketSource("wss://example.test/ws", "secret123", "prog", nil)
	got, err := s.dialURL()
	if err != nil {
		t.Fatalf("dialURL: %v", err)
	}
	want := "wss://example.test/ws?api-key=secret123"
	if got != want {
		t.Errorf("dialURL() = %q, want %q", got, want)
	}
}

// TestDialURLRejectsMalformedURL surfaces a bad UPSTREAM_WS_URL as an
// error the caller can treat as permanent instead of retrying forever.
func TestDialURLRejectsMalformedURL(t *testing.T) {
	s := NewWebsocketSource("://not-a-url", "key", "prog", nil)
	if _, err := s.dialURL(); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}
