package listener

import (
	"fmt"
	"time"

	"github.com/cuemby/pairstream/pkg/types"
)

// swapNotification is the JSON payload pg_notify emits from the
// swaps_notify trigger. Only the fields the outbound swap view needs
// are decoded; the rest of the row is already durable in the swaps
// table and isn't re-sent downstream.
type swapNotification struct {
	Op          string   `json:"op"`
	TxSignature string   `json:"tx_signature"`
	Timestamp   string   `json:"timestamp"`
	Pair        string   `json:"pair"`
	Price       float64  `json:"price"`
	VolumeUSD   *float64 `json:"volume_usd"`
}

func (n swapNotification) toOutboundMessage() (types.OutboundMessage, error) {
	ts, err := time.Parse(time.RFC3339, n.Timestamp)
	if err != nil {
		return types.OutboundMessage{}, fmt.Errorf("listener: parse swap timestamp %q: %w", n.Timestamp, err)
	}
	return types.OutboundMessage{
		Kind: types.OutboundKindSwap,
		Swap: &types.SwapOutbound{
			PairID:      n.Pair,
			Price:       n.Price,
			Timestamp:   ts.Unix(),
			TxSignature: n.TxSignature,
			VolumeUSD:   n.VolumeUSD,
		},
		EmittedAt: time.Now(),
	}, nil
}

// positionUpdateNotification is the JSON payload pg_notify emits from
// the user_borrow_positions_notify trigger.
type positionUpdateNotification struct {
	Pair                 string `json:"pair"`
	Signer               string `json:"signer"`
	Position             string `json:"position"`
	TransactionSignature string `json:"transaction_signature"`
	Slot                 uint64 `json:"slot"`
}

func (n positionUpdateNotification) toOutboundMessage() types.OutboundMessage {
	return types.OutboundMessage{
		Kind: types.OutboundKindPosition,
		Position: &types.PositionOutbound{
			PairID:      n.Pair,
			Signer:      n.Signer,
			PositionID:  n.Position,
			Slot:        n.Slot,
			TxSignature: n.TransactionSignature,
		},
		EmittedAt: time.Now(),
	}
}
