// Package socket is the raw-socket half of the streaming delivery
// surface (C7): a websocket endpoint that upgrades GET /subscribe,
// sends a Welcome frame, then forwards every fan-out hub message to
// the client as a JSON text frame until the client disconnects or a
// write fails. GET /health and GET /stats serve operators that don't
// want to open a websocket just to check the server is alive.
//
// Origin policy follows NODE_ENV the same way the gRPC server's
// reflection does: permissive in development, restricted to
// ALLOWED_ORIGINS in production.
package socket
