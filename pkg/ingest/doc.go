// Package ingest maintains the live subscription to the upstream
// transaction feed, filtered to a single program id, and emits a stream
// of Update values for the dispatcher to decode. It reconnects on
// transport failure, and also when a notification cannot be parsed off
// the socket. TransactionFetcher offers a direct single-transaction
// lookup, which the websocket source does not call.
package ingest
