// Package dispatch is the single-consumer pump between the ingestion
// source and the event handlers: it decodes each instruction through
// the codec registry, in upstream-delivery order, and calls the one
// handler registered for the decoded event type. Handler invocations
// are serial — this package makes no attempt to parallelize them.
package dispatch
