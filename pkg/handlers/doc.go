// Package handlers implements the event handlers (C4): one function
// per decoded event variant, each persisting through pkg/store and,
// for swaps, publishing the curated outbound view through pkg/events.
package handlers
