// Package listener is the datastore-notify listener (C6): it LISTENs
// on Postgres notification channels populated by triggers on the
// swaps and user_borrow_positions tables, applies the swap channel's
// insert-then-enrich dedup rule, and re-publishes the result onto the
// fan-out hub (C5) so it reaches streaming subscribers exactly like a
// handler-originated publish would.
package listener
