package store

import (
	"context"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// InsertPositionCreated appends the first record of a borrow position
// into user_position_created_events. It is insert-only: a position is
// created exactly once, and a re-delivery is a no-op rather than an
// update.
func (s *PGStore) InsertPositionCreated(ctx context.Context, row PositionCreatedRow) error {
	const q = `
INSERT INTO user_position_created_events (transaction_signature, timestamp, pair, signer, position_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (transaction_signature) DO NOTHING`

	_, err := s.pool.Exec(ctx, q,
		row.TransactionSignature, row.Timestamp, row.Pair, row.Signer, row.PositionID)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("user_position_created_events").Inc()
	return nil
}

// UpsertPositionUpdated writes the append-only event row into
// user_position_updated_events and the "latest state" row into
// user_borrow_positions, keyed by (pair, signer), inside one
// transaction — unlike liquidity-position-updated below, this pair of
// writes is fixed to run atomically.
func (s *PGStore) UpsertPositionUpdated(ctx context.Context, row PositionUpdatedRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classifyWriteError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertEvent = `
INSERT INTO user_position_updated_events (transaction_signature, timestamp, pair, signer, position_id,
	collateral_a, collateral_b, debt_a_shares, debt_b_shares,
	applied_min_cf_bps_a, applied_min_cf_bps_b)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11)
ON CONFLICT (transaction_signature) DO NOTHING`

	if _, err := tx.Exec(ctx, insertEvent,
		row.TransactionSignature, row.Timestamp, row.Pair, row.Signer, row.PositionID,
		row.CollateralA.String(), row.CollateralB.String(), row.DebtAShares.String(), row.DebtBShares.String(),
		row.AppliedMinCfBpsA, row.AppliedMinCfBpsB,
	); err != nil {
		return classifyWriteError(err)
	}

	const upsertLatest = `
INSERT INTO user_borrow_positions (pair, signer, position_id, collateral_a, collateral_b,
	debt_a_shares, debt_b_shares, applied_min_cf_bps_a, applied_min_cf_bps_b,
	transaction_signature, slot, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10, $11, $12)
ON CONFLICT (pair, signer) DO UPDATE SET
	position_id = EXCLUDED.position_id, collateral_a = EXCLUDED.collateral_a, collateral_b = EXCLUDED.collateral_b,
	debt_a_shares = EXCLUDED.debt_a_shares, debt_b_shares = EXCLUDED.debt_b_shares,
	applied_min_cf_bps_a = EXCLUDED.applied_min_cf_bps_a, applied_min_cf_bps_b = EXCLUDED.applied_min_cf_bps_b,
	transaction_signature = EXCLUDED.transaction_signature, slot = EXCLUDED.slot,
	updated_at = EXCLUDED.updated_at`

	if _, err := tx.Exec(ctx, upsertLatest,
		row.Pair, row.Signer, row.PositionID,
		row.CollateralA.String(), row.CollateralB.String(), row.DebtAShares.String(), row.DebtBShares.String(),
		row.AppliedMinCfBpsA, row.AppliedMinCfBpsB,
		row.TransactionSignature, row.Slot, row.Timestamp,
	); err != nil {
		return classifyWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("user_position_updated_events").Inc()
	return nil
}

// InsertPositionLiquidated appends the record of a liquidation into
// user_position_liquidated_events. Like position creation, this never
// updates an existing row.
func (s *PGStore) InsertPositionLiquidated(ctx context.Context, row PositionLiquidatedRow) error {
	const q = `
INSERT INTO user_position_liquidated_events (transaction_signature, timestamp, pair, signer, position_id, liquidator,
	collateral_a_liquidated, collateral_b_liquidated, debt_a_liquidated, debt_b_liquidated,
	collateral_price, shortfall, liquidation_bonus_applied, k_a, k_b)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10::numeric,
	$11::numeric, $12::numeric, $13, $14::numeric, $15::numeric)
ON CONFLICT (transaction_signature) DO NOTHING`

	_, err := s.pool.Exec(ctx, q,
		row.TransactionSignature, row.Timestamp, row.Pair, row.Signer, row.PositionID, row.Liquidator,
		row.CollateralALiquidated.String(), row.CollateralBLiquidated.String(),
		row.DebtALiquidated.String(), row.DebtBLiquidated.String(),
		row.CollateralPrice.String(), row.Shortfall.String(), row.LiquidationBonusApplied,
		row.KA.String(), row.KB.String(),
	)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("user_position_liquidated_events").Inc()
	return nil
}

// UpsertLiquidityPositionUpdated writes the append-only
// user_lp_position_updated_events row, then updates the signer's
// user_liquidity_positions row; if the UPDATE's command tag reports
// zero rows affected, it follows with an INSERT. user_liquidity_positions
// carries no unique constraint on (pair, signer), so this two-step
// sequence cannot be expressed as a single ON CONFLICT upsert — two
// concurrent deliveries for the same holder could both see zero rows
// updated and both insert, duplicating the row. A Postgres advisory
// transaction lock keyed by (pair, signer) mitigates that race without
// requiring a schema change; the append-only insert and this
// update-or-insert step deliberately remain two separate transactions,
// matching the source system's behavior.
func (s *PGStore) UpsertLiquidityPositionUpdated(ctx context.Context, row LiquidityPositionRow) error {
	const insertEvent = `
INSERT INTO user_lp_position_updated_events (transaction_signature, timestamp, pair, signer, amount_a, amount_b, lp_amount)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric)
ON CONFLICT (transaction_signature, timestamp) DO NOTHING`

	if _, err := s.pool.Exec(ctx, insertEvent,
		row.TransactionSignature, row.Timestamp, row.Pair, row.Signer,
		row.AmountA.String(), row.AmountB.String(), row.LPAmount.String(),
	); err != nil {
		return classifyWriteError(err)
	}

	timer := metrics.NewTimer()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classifyWriteError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(row.Pair, row.Signer)); err != nil {
		return classifyWriteError(err)
	}
	timer.ObserveDuration(metrics.AdvisoryLockWaitDuration)

	tag, err := tx.Exec(ctx, `
UPDATE user_liquidity_positions SET amount_a = $3::numeric, amount_b = $4::numeric,
	lp_amount = $5::numeric, updated_at = $6
WHERE pair = $1 AND signer = $2`,
		row.Pair, row.Signer, row.AmountA.String(), row.AmountB.String(), row.LPAmount.String(), row.Timestamp,
	)
	if err != nil {
		return classifyWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
INSERT INTO user_liquidity_positions (pair, signer, amount_a, amount_b, lp_amount, updated_at)
VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6)`,
			row.Pair, row.Signer, row.AmountA.String(), row.AmountB.String(), row.LPAmount.String(), row.Timestamp,
		); err != nil {
			return classifyWriteError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("user_liquidity_positions").Inc()
	return nil
}
