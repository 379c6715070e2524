package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cuemby/pairstream/pkg/config"
	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/store"
)

var (
	printOnly bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pairstream-migrate",
	Short: "Apply the pairstream indexer's Postgres schema",
	Long: `pairstream-migrate applies the indexer's table, index, and
notify-trigger definitions to the target Postgres database. Every
statement is idempotent, so running it again after a deploy is safe.`,
	RunE: runMigrate,
}

func init() {
	_ = godotenv.Load()
	rootCmd.Flags().BoolVar(&printOnly, "print", false, "print the embedded schema and exit without connecting")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if printOnly {
		fmt.Print(store.Schema())
		return nil
	}

	log.Init(log.Config{Level: log.InfoLevel})
	logger := log.WithComponent("migrate")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	logger.Info().Msg("applying schema")
	if err := db.ApplyMigrations(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info().Msg("schema applied successfully")
	return nil
}
