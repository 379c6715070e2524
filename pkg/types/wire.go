package types

import (
	"encoding/json"
	"fmt"
)

// swapWire and positionWire are the flattened JSON shapes OutboundMessage
// serializes to. Every transport (the gRPC stream in pkg/api, the socket
// hub in pkg/socket) marshals the same OutboundMessage value, so the two
// surfaces can never drift from each other.
type swapWire struct {
	Type        OutboundKind `json:"type"`
	PairID      string       `json:"pair"`
	Price       float64      `json:"price"`
	Timestamp   int64        `json:"timestamp"`
	TxSignature string       `json:"tx_signature"`
	VolumeUSD   *float64     `json:"volume_usd,omitempty"`
}

type positionWire struct {
	Type        OutboundKind `json:"type"`
	PairID      string       `json:"pair"`
	Signer      string       `json:"signer"`
	PositionID  string       `json:"position_id"`
	Slot        uint64       `json:"slot"`
	TxSignature string       `json:"tx_signature"`
}

// MarshalJSON flattens the tagged-union shape into the wire message the
// protocol document describes — {"type": "swap_event", ...} or
// {"type": "position_update", ...} — rather than the nested
// {"Kind":..., "Swap":{...}} a naive struct tag marshal would produce.
func (m OutboundMessage) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case OutboundKindSwap:
		if m.Swap == nil {
			return nil, errMissingPayload(OutboundKindSwap)
		}
		return json.Marshal(swapWire{
			Type:        OutboundKindSwap,
			PairID:      m.Swap.PairID,
			Price:       m.Swap.Price,
			Timestamp:   m.Swap.Timestamp,
			TxSignature: m.Swap.TxSignature,
			VolumeUSD:   m.Swap.VolumeUSD,
		})
	case OutboundKindPosition:
		if m.Position == nil {
			return nil, errMissingPayload(OutboundKindPosition)
		}
		return json.Marshal(positionWire{
			Type:        OutboundKindPosition,
			PairID:      m.Position.PairID,
			Signer:      m.Position.Signer,
			PositionID:  m.Position.PositionID,
			Slot:        m.Position.Slot,
			TxSignature: m.Position.TxSignature,
		})
	default:
		return nil, errMissingPayload(m.Kind)
	}
}

func errMissingPayload(kind OutboundKind) error {
	return fmt.Errorf("types: outbound message of kind %q carries no payload", kind)
}
