package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/metrics"
)

const reconnectDelay = 5 * time.Second

// subscribeFilter mirrors the upstream feed's transaction-subscribe
// filter: a program-id include list plus the commitment/encoding
// options the source always requests.
type subscribeFilter struct {
	AccountInclude        []string `json:"accountInclude"`
	Vote                  bool     `json:"vote"`
	Failed                bool     `json:"failed"`
	Commitment            string   `json:"commitment"`
	Encoding              string   `json:"encoding"`
	TransactionDetails    string   `json:"transactionDetails"`
	MaxSupportedTxVersion int      `json:"maxSupportedTransactionVersion"`
}

type subscribeRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      int               `json:"id"`
	Method  string            `json:"method"`
	Params  []subscribeFilter `json:"params"`
}

// transactionFrame is the shape of one streamed update: a transaction's
// signature, slot, and the inner instructions invoked against the
// filtered program, each still carrying its own ordered account list
// and base64-encoded discriminator-tagged payload.
type transactionFrame struct {
	Params struct {
		Result struct {
			Signature    string `json:"signature"`
			Slot         uint64 `json:"slot"`
			BlockTime    int64  `json:"blockTime"`
			Instructions []struct {
				Data     string   `json:"data"`
				Accounts []string `json:"accounts"`
			} `json:"instructions"`
		} `json:"result"`
	} `json:"params"`
}

// WebsocketSource subscribes to the upstream transaction-streaming feed
// with a program-id filter and reconnects with a fixed delay whenever
// the connection drops.
type WebsocketSource struct {
	url       string
	apiKey    string
	programID string
	rpc       *TransactionFetcher
}

// NewWebsocketSource builds a source against wsURL (apiKey appended as
// a query parameter, matching the upstream's auth convention), filtered
// to programID. rpc is stored on the source but Consume does not call
// it: a frame that fails to parse ends the connection, which is then
// re-established after the reconnect delay.
func NewWebsocketSource(wsURL, apiKey, programID string, rpc *TransactionFetcher) *WebsocketSource {
	return &WebsocketSource{url: wsURL, apiKey: apiKey, programID: programID, rpc: rpc}
}

// Consume implements the C2 contract: a single receive-only channel of
// Update values that stays open, internally reconnecting, until ctx is
// canceled. Only context cancellation closes the channel, so callers
// can range over it without a separate done signal. An upstream URL
// that cannot be parsed is returned as an error before any connection
// is attempted; every later connection error is retried.
func (s *WebsocketSource) Consume(ctx context.Context) (<-chan Update, error) {
	if _, err := s.dialURL(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	out := make(chan Update, 256)
	go s.loop(ctx, out)
	return out, nil
}

func (s *WebsocketSource) loop(ctx context.Context, out chan<- Update) {
	defer close(out)
	logger := log.WithComponent("ingest.websocket")
	delay := backoff.NewConstantBackOff(reconnectDelay)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := s.connectAndConsume(ctx, out, logger)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn().Err(err).Msg("upstream connection lost, reconnecting")
			metrics.UpstreamReconnectsTotal.Inc()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay.NextBackOff()):
		}
	}
}

func (s *WebsocketSource) connectAndConsume(ctx context.Context, out chan<- Update, logger zerolog.Logger) error {
	endpoint, err := s.dialURL()
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("ingest: dial upstream: %w", err)
	}
	defer conn.Close()

	req := subscribeRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "transactionSubscribe",
		Params: []subscribeFilter{{
			AccountInclude:        []string{s.programID},
			Vote:                  false,
			Failed:                false,
			Commitment:            "confirmed",
			Encoding:              "base64",
			TransactionDetails:    "full",
			MaxSupportedTxVersion: 0,
		}},
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("ingest: subscribe: %w", err)
	}
	logger.Info().Str("program_id", s.programID).Msg("subscribed to upstream feed")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var frame transactionFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("ingest: read frame: %w", err)
		}

		for _, ix := range decodeFrameInstructions(frame) {
			metrics.UpdatesReceivedTotal.WithLabelValues("websocket").Inc()
			ixCopy := ix
			select {
			case out <- Update{Instruction: &ixCopy}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (s *WebsocketSource) dialURL() (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("invalid upstream ws url: %w", err)
	}
	if s.apiKey != "" {
		q := u.Query()
		q.Set("api-key", s.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func decodeFrameInstructions(frame transactionFrame) []InstructionUpdate {
	result := frame.Params.Result
	updates := make([]InstructionUpdate, 0, len(result.Instructions))
	for _, ix := range result.Instructions {
		data, err := base64.StdEncoding.DecodeString(ix.Data)
		if err != nil {
			continue
		}
		updates = append(updates, InstructionUpdate{
			Raw:         data,
			Accounts:    ix.Accounts,
			TxSignature: result.Signature,
			Slot:        result.Slot,
			BlockTime:   result.BlockTime,
		})
	}
	return updates
}
