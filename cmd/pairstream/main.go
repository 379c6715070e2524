package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/pairstream/pkg/api"
	"github.com/cuemby/pairstream/pkg/config"
	"github.com/cuemby/pairstream/pkg/dispatch"
	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/handlers"
	"github.com/cuemby/pairstream/pkg/health"
	"github.com/cuemby/pairstream/pkg/ingest"
	"github.com/cuemby/pairstream/pkg/listener"
	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/socket"
	"github.com/cuemby/pairstream/pkg/store"
	"github.com/cuemby/pairstream/pkg/supervisor"
)

// defaultUpstreamWSURL is used when UPSTREAM_WS_URL is unset; it is the
// same Helius Atlas transaction-streaming endpoint the upstream
// credentials (UPSTREAM_API_KEY) are issued against.
const defaultUpstreamWSURL = "wss://atlas-mainnet.helius-rpc.com"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "pairstream",
	Short: "Index on-chain swap and position events and stream them to subscribers",
	Long: `pairstream ingests decoded program instructions and events from an
upstream real-time feed, persists them idempotently, enriches derived
quantities like spot price, and re-broadcasts a curated subset to
gRPC and websocket subscribers.`,
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "override LOG_JSON")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = logJSON
	}

	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	logger := log.WithComponent("main")
	logger.Info().Str("program_id", cfg.ProgramID).Bool("production", cfg.Production).Msg("starting pairstream")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer db.Close()

	reporter := health.NewReporter(nil)
	reporter.SetReady(health.ComponentDatabase, true)

	hub := events.NewHub()
	h := handlers.New(db, hub)
	dispatcher := dispatch.New()
	h.Register(dispatcher)

	wsURL := cfg.UpstreamWSURL
	if wsURL == "" {
		wsURL = defaultUpstreamWSURL
	}
	rpcFetcher := ingest.NewTransactionFetcher(cfg.UpstreamRPCURL)
	wsSource := ingest.NewWebsocketSource(wsURL, cfg.UpstreamAPIKey, cfg.ProgramID, rpcFetcher)
	backfillSource, err := ingest.NewGPABackfillSource(cfg.UpstreamRPCURL, cfg.ProgramID)
	if err != nil {
		return fmt.Errorf("build backfill source: %w", err)
	}

	sup := supervisor.New()

	sup.Add("ingest", func(ctx context.Context) error {
		backfillUpdates, err := backfillSource.Consume(ctx)
		if err != nil {
			return fmt.Errorf("start backfill: %w", err)
		}
		liveUpdates, err := wsSource.Consume(ctx)
		if err != nil {
			return fmt.Errorf("start live feed: %w", err)
		}
		reporter.SetReady(health.ComponentUpstream, true)
		defer reporter.SetReady(health.ComponentUpstream, false)
		return dispatcher.Run(ctx, mergeUpdates(backfillUpdates, liveUpdates))
	})

	swapListener := listener.NewSwapListener(
		db.Pool(), hub,
		time.Duration(cfg.DedupTimeoutSecs)*time.Second,
		time.Duration(cfg.DedupTickSecs)*time.Second,
	)
	positionListener := listener.NewPositionListener(db.Pool(), hub)

	sup.Add("swap-listener", func(ctx context.Context) error {
		reporter.SetReady(health.ComponentListener, true)
		defer reporter.SetReady(health.ComponentListener, false)
		return swapListener.Run(ctx)
	})

	sup.Add("position-listener", positionListener.Run)

	if cfg.GRPCPort != 0 {
		grpcServer := api.NewServer(hub, cfg.Production)
		sup.Add("grpc-server", func(ctx context.Context) error {
			return grpcServer.Serve(ctx, fmt.Sprintf(":%d", cfg.GRPCPort))
		})
	}

	if cfg.WebSocketPort != 0 {
		socketServer := socket.NewServer(hub, cfg.AllowedOrigins, cfg.Production)
		sup.Add("socket-server", func(ctx context.Context) error {
			return socketServer.Serve(ctx, fmt.Sprintf(":%d", cfg.WebSocketPort))
		})
	}

	if cfg.HealthPort != 0 {
		healthServer := api.NewHealthServer(db.Pool(), reporter)
		sup.Add("health-server", func(ctx context.Context) error {
			return healthServer.Serve(ctx, fmt.Sprintf(":%d", cfg.HealthPort))
		})
	}

	sup.Run(ctx)
	logger.Info().Msg("pairstream shut down")
	return nil
}

// mergeUpdates fans two update channels into one, closing the result
// once both inputs are drained. The backfill channel closes itself
// after its one-shot pass; the live channel stays open until the
// context backing both sources is canceled.
func mergeUpdates(a, b <-chan ingest.Update) <-chan ingest.Update {
	out := make(chan ingest.Update, 256)
	go func() {
		defer close(out)
		for a != nil || b != nil {
			select {
			case u, ok := <-a:
				if !ok {
					a = nil
					continue
				}
				out <- u
			case u, ok := <-b:
				if !ok {
					b = nil
					continue
				}
				out <- u
			}
		}
	}()
	return out
}
