// Package store is the Postgres-backed persistence layer (the
// datastore side of C4 and the listen side of C6). Every write is
// idempotent on its documented key: re-delivery of the same
// transaction signature overwrites the row (or, for the insert-only
// event tables, is ignored) rather than duplicating it. Amounts
// that can exceed an int64 (token amounts, share counts, k-values) are
// persisted as NUMERIC and passed as decimal strings rather than risking
// silent truncation through a signed 64-bit column.
package store
