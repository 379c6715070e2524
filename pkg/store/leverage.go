package store

import (
	"context"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// UpsertLeveragePositionCreated writes into leverage_position_created_events.
func (s *PGStore) UpsertLeveragePositionCreated(ctx context.Context, row LeveragePositionRow) error {
	return s.upsertLeveragePosition(ctx, "leverage_position_created_events", row)
}

// UpsertLeveragePositionUpdated writes into leverage_position_updated_events,
// sharing the upsert-on-conflict logic of the created variant: a
// re-delivered creation and a later update both converge on the same row.
func (s *PGStore) UpsertLeveragePositionUpdated(ctx context.Context, row LeveragePositionRow) error {
	return s.upsertLeveragePosition(ctx, "leverage_position_updated_events", row)
}

func (s *PGStore) upsertLeveragePosition(ctx context.Context, table string, row LeveragePositionRow) error {
	q := `
INSERT INTO ` + table + ` (transaction_signature, timestamp, pair, signer, position_id, collateral, debt, leverage)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8)
ON CONFLICT (transaction_signature) DO UPDATE SET
	pair = EXCLUDED.pair, signer = EXCLUDED.signer, position_id = EXCLUDED.position_id,
	collateral = EXCLUDED.collateral, debt = EXCLUDED.debt, leverage = EXCLUDED.leverage`

	_, err := s.pool.Exec(ctx, q,
		row.TransactionSignature, row.Timestamp, row.Pair, row.Signer, row.PositionID,
		row.Collateral.String(), row.Debt.String(), row.Leverage,
	)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues(table).Inc()
	return nil
}
