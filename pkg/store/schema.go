package store

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ApplyMigrations runs the embedded schema against the pool. It is
// idempotent — every statement is a CREATE ... IF NOT EXISTS or
// CREATE OR REPLACE — so it is safe to run on every process start in
// addition to being invoked explicitly by the migration command.
func (s *PGStore) ApplyMigrations(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}

// Schema returns the embedded DDL, for tooling that wants to print or
// diff it without opening a connection.
func Schema() string {
	return schemaSQL
}
