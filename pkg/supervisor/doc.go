// Package supervisor is the daemon's top-level task runner (C8): it
// starts every long-running component (source consume, dispatcher,
// notify-listeners, the gRPC and socket servers), watches each for
// completion, and restarts the ones that exit with an error behind a
// doubling backoff. A single context derived from the process's
// shutdown signal is fanned out to every task for cooperative
// cancellation; the supervisor exits once every task has drained.
package supervisor
