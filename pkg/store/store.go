package store

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence surface the event handlers (C4) write
// through. It is a plain interface so handler tests can substitute a
// fake without a real Postgres instance.
type Store interface {
	UpsertSwap(ctx context.Context, row SwapRow) error
	UpsertLiquidity(ctx context.Context, row LiquidityRow) error
	UpsertCollateralAdjust(ctx context.Context, row AdjustRow) error
	UpsertDebtAdjust(ctx context.Context, row AdjustRow) error
	InsertPositionCreated(ctx context.Context, row PositionCreatedRow) error
	UpsertPositionUpdated(ctx context.Context, row PositionUpdatedRow) error
	InsertPositionLiquidated(ctx context.Context, row PositionLiquidatedRow) error
	UpsertLiquidityPositionUpdated(ctx context.Context, row LiquidityPositionRow) error
	UpsertLeveragePositionCreated(ctx context.Context, row LeveragePositionRow) error
	UpsertLeveragePositionUpdated(ctx context.Context, row LeveragePositionRow) error
	UpsertMarketCreated(ctx context.Context, row MarketRow) error
	UpsertMarketUpdated(ctx context.Context, row MarketRow) error
}

// PGStore implements Store against a pooled Postgres connection.
type PGStore struct {
	pool *pgxpool.Pool
}

// Open creates the connection pool. The pool is created once by the
// supervisor and passed explicitly into every constructor that needs
// it — there is no ambient global pool.
func Open(ctx context.Context, connString string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Pool exposes the underlying pool for the notify listener (C6), which
// needs a dedicated, non-pooled-in-the-usual-sense connection to LISTEN
// on.
func (s *PGStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases every connection in the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// advisoryLockKey hashes a (pair, signer) pair into the int64 key
// pg_advisory_xact_lock expects. FNV-1a is used only as a fast, stable
// hash — collisions merely serialize two unrelated keys, never corrupt
// data.
func advisoryLockKey(pair, signer string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(pair))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(signer))
	return int64(h.Sum64())
}
