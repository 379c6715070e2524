package store

import (
	"context"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// UpsertSwap writes one swap, keyed by (tx_signature, timestamp) as
// specified — a transaction can in principle carry more than one swap
// instruction, so the signature alone is not unique.
func (s *PGStore) UpsertSwap(ctx context.Context, row SwapRow) error {
	const q = `
INSERT INTO swaps (tx_signature, timestamp, pair, signer, is_side_a_in, amount_in, amount_out,
	reserve_a, reserve_b, fee_paid_a, fee_paid_b, volume_usd, price)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10::numeric, $11::numeric, $12, $13)
ON CONFLICT (tx_signature, timestamp) DO UPDATE SET
	pair = EXCLUDED.pair, signer = EXCLUDED.signer, is_side_a_in = EXCLUDED.is_side_a_in,
	amount_in = EXCLUDED.amount_in, amount_out = EXCLUDED.amount_out,
	reserve_a = EXCLUDED.reserve_a, reserve_b = EXCLUDED.reserve_b,
	fee_paid_a = EXCLUDED.fee_paid_a, fee_paid_b = EXCLUDED.fee_paid_b,
	volume_usd = COALESCE(EXCLUDED.volume_usd, swaps.volume_usd), price = EXCLUDED.price`

	_, err := s.pool.Exec(ctx, q,
		row.TxSignature, row.Timestamp, row.Pair, row.Signer, row.IsSideAIn,
		row.AmountIn.String(), row.AmountOut.String(), row.ReserveA.String(), row.ReserveB.String(),
		row.FeePaidA.String(), row.FeePaidB.String(), row.VolumeUSD, row.Price,
	)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("swaps").Inc()
	return nil
}
