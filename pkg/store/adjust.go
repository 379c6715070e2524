package store

import (
	"context"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// UpsertCollateralAdjust records a collateral top-up or withdrawal into
// adjust_collateral_events, keyed by transaction_signature.
func (s *PGStore) UpsertCollateralAdjust(ctx context.Context, row AdjustRow) error {
	return s.upsertAdjust(ctx, "adjust_collateral_events", row)
}

// UpsertDebtAdjust records a debt increase or repayment into
// adjust_debt_events, sharing the column shape of adjust_collateral_events.
func (s *PGStore) UpsertDebtAdjust(ctx context.Context, row AdjustRow) error {
	return s.upsertAdjust(ctx, "adjust_debt_events", row)
}

func (s *PGStore) upsertAdjust(ctx context.Context, table string, row AdjustRow) error {
	q := `
INSERT INTO ` + table + ` (transaction_signature, slot, event_timestamp, pair, signer, amount_a, amount_b)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric)
ON CONFLICT (transaction_signature) DO UPDATE SET
	slot = EXCLUDED.slot, event_timestamp = EXCLUDED.event_timestamp,
	pair = EXCLUDED.pair, signer = EXCLUDED.signer,
	amount_a = EXCLUDED.amount_a, amount_b = EXCLUDED.amount_b`

	_, err := s.pool.Exec(ctx, q,
		row.TransactionSignature, row.Slot, row.EventTimestamp, row.Pair, row.Signer,
		row.AmountA.String(), row.AmountB.String(),
	)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues(table).Inc()
	return nil
}
