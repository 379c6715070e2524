// Package log provides structured logging for pairstream using zerolog.
//
// A single global Logger is configured once via Init and shared across the
// daemon; domain-scoped child loggers are created with the With* helpers
// (WithComponent, WithPairID, WithTxSignature, WithSubscriberID) rather than
// passing fields through every call site.
package log
