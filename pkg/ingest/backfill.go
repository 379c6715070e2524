package ingest

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/metrics"
)

// GPABackfillSource does one pass over every account owned by the
// target program and emits each as an AccountUpdate. It exists for the
// initial-load and recovery case where the live stream alone would miss
// markets and positions that existed before the process started; the
// handlers that consume its output are the same idempotent upserts the
// live path uses, so replaying it is always safe.
type GPABackfillSource struct {
	client    *rpc.Client
	programID solana.PublicKey
}

// NewGPABackfillSource builds a backfill source against a plain
// JSON-RPC endpoint (the same one TransactionFetcher uses).
func NewGPABackfillSource(endpoint, programID string) (*GPABackfillSource, error) {
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid program id %q: %w", programID, err)
	}
	return &GPABackfillSource{client: rpc.New(endpoint), programID: pk}, nil
}

// Consume fetches the current slot, lists every program account, and
// emits them all on the returned channel before closing it. Unlike
// WebsocketSource this is a one-shot pass, not a standing subscription.
func (s *GPABackfillSource) Consume(ctx context.Context) (<-chan Update, error) {
	slotResult, err := s.client.GetSlot(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("ingest: backfill get slot: %w", err)
	}

	accounts, err := s.client.GetProgramAccountsWithOpts(ctx, s.programID, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: backfill list program accounts: %w", err)
	}

	logger := log.WithComponent("ingest.backfill")
	logger.Info().Int("count", len(accounts)).Msg("backfill found program accounts")

	out := make(chan Update, len(accounts))
	go func() {
		defer close(out)
		for _, acc := range accounts {
			metrics.UpdatesReceivedTotal.WithLabelValues("backfill").Inc()
			update := Update{Account: &AccountUpdate{
				Pubkey: acc.Pubkey.String(),
				Data:   acc.Account.Data.GetBinary(),
				Slot:   uint64(slotResult),
			}}
			select {
			case out <- update:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
