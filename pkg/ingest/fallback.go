package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionFetcher looks a single transaction signature up directly
// against the upstream RPC endpoint. WebsocketSource holds one but does
// not call it; a streamed frame that fails to parse ends that
// connection and the source reconnects.
type TransactionFetcher struct {
	client *rpc.Client
}

// NewTransactionFetcher builds a fetcher against endpoint (a plain
// JSON-RPC HTTP URL, not the websocket subscription URL).
func NewTransactionFetcher(endpoint string) *TransactionFetcher {
	return &TransactionFetcher{client: rpc.New(endpoint)}
}

// FetchBySignature makes one attempt and retries up to 3 times with an
// exponential backoff starting at 500ms. It gives up and returns the
// last error once retries are exhausted.
func (f *TransactionFetcher) FetchBySignature(ctx context.Context, signature string) (*rpc.GetTransactionResult, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid signature %q: %w", signature, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	bounded := backoff.WithMaxRetries(b, 3)

	var result *rpc.GetTransactionResult
	opErr := backoff.Retry(func() error {
		maxVersion := uint64(0)
		res, err := f.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       "base64",
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if err != nil {
			return err
		}
		result = res
		return nil
	}, backoff.WithContext(bounded, ctx))
	if opErr != nil {
		return nil, fmt.Errorf("ingest: fetch transaction %s: %w", signature, opErr)
	}
	return result, nil
}
