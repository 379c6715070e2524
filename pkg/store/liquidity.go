package store

import (
	"context"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// UpsertLiquidity records one mint or burn event against the shared
// adjust_liquidity table, keyed by (tx_signature, timestamp) for the
// same multi-instruction-per-transaction reason as swaps.
func (s *PGStore) UpsertLiquidity(ctx context.Context, row LiquidityRow) error {
	const q = `
INSERT INTO adjust_liquidity (tx_signature, timestamp, event_type, pair, signer, amount_a, amount_b, liquidity)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric)
ON CONFLICT (tx_signature, timestamp) DO UPDATE SET
	event_type = EXCLUDED.event_type, pair = EXCLUDED.pair, signer = EXCLUDED.signer,
	amount_a = EXCLUDED.amount_a, amount_b = EXCLUDED.amount_b, liquidity = EXCLUDED.liquidity`

	_, err := s.pool.Exec(ctx, q,
		row.TxSignature, row.Timestamp, row.EventType, row.Pair, row.Signer,
		row.AmountA.String(), row.AmountB.String(), row.Liquidity.String(),
	)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("adjust_liquidity").Inc()
	return nil
}
