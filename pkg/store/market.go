package store

import (
	"context"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// UpsertMarketCreated writes a pair's initial configuration, including
// its token and LP mint identities.
func (s *PGStore) UpsertMarketCreated(ctx context.Context, row MarketRow) error {
	const q = `
INSERT INTO markets (pair_address, token_a, token_b, lp_mint, rate_model, swap_fee_bps,
	half_life, fixed_cf_bps, params_hash, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (pair_address) DO UPDATE SET
	token_a = EXCLUDED.token_a, token_b = EXCLUDED.token_b, lp_mint = EXCLUDED.lp_mint,
	rate_model = EXCLUDED.rate_model, swap_fee_bps = EXCLUDED.swap_fee_bps,
	half_life = EXCLUDED.half_life, fixed_cf_bps = EXCLUDED.fixed_cf_bps,
	params_hash = EXCLUDED.params_hash, version = EXCLUDED.version
WHERE markets.version <= EXCLUDED.version`

	_, err := s.pool.Exec(ctx, q,
		row.PairAddress, row.TokenA, row.TokenB, row.LPMint, row.RateModel, row.SwapFeeBps,
		row.HalfLife, row.FixedCfBps, row.ParamsHash, row.Version,
	)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("markets").Inc()
	return nil
}

// UpsertMarketUpdated writes a pair's configuration after a parameter
// change. A pair-updated event never carries token or LP mint
// identities, so it only touches the configuration columns — if no
// row exists yet (the listener started mid-stream and missed the
// pair-created event), it inserts one with empty token identities,
// which a later backfill or the eventual pair-created delivery fills in.
func (s *PGStore) UpsertMarketUpdated(ctx context.Context, row MarketRow) error {
	const q = `
INSERT INTO markets (pair_address, token_a, token_b, lp_mint, rate_model, swap_fee_bps,
	half_life, fixed_cf_bps, params_hash, version)
VALUES ($1, '', '', '', $2, $3, $4, $5, $6, $7)
ON CONFLICT (pair_address) DO UPDATE SET
	rate_model = EXCLUDED.rate_model, swap_fee_bps = EXCLUDED.swap_fee_bps,
	half_life = EXCLUDED.half_life, fixed_cf_bps = EXCLUDED.fixed_cf_bps,
	params_hash = EXCLUDED.params_hash, version = EXCLUDED.version
WHERE markets.version <= EXCLUDED.version`

	_, err := s.pool.Exec(ctx, q,
		row.PairAddress, row.RateModel, row.SwapFeeBps, row.HalfLife, row.FixedCfBps,
		row.ParamsHash, row.Version,
	)
	if err != nil {
		return classifyWriteError(err)
	}
	metrics.UpsertsTotal.WithLabelValues("markets").Inc()
	return nil
}
