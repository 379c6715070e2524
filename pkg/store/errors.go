package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cuemby/pairstream/pkg/types"
)

// classifyWriteError maps a pgx error onto the dispatcher's error
// taxonomy: constraint violations (bad foreign key, check failure) are
// the caller's problem and get swallowed upstream, anything else —
// connection loss, pool exhaustion, deadlock — is treated as
// transient and bubbles to the supervisor for a restart.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code[:2] {
		case "23": // integrity_constraint_violation
			return fmt.Errorf("%w: %s", types.ErrConstraintViolation, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %s", types.ErrDatastoreTransient, err)
}
