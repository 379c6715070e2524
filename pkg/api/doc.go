// Package api is the streaming-RPC half of the public delivery surface
// (C7): a gRPC server exposing one server-streaming method that
// attaches a caller to the fan-out hub (C5), the standard gRPC
// health-checking service, and, outside production, server reflection.
// A second, HTTP-based server in this package exposes liveness and
// Prometheus metrics for operators, independent of the streaming port.
//
// Wire messages are plain Go structs marshaled as JSON rather than
// through generated protobuf code: jsonCodec overrides grpc-go's
// default "proto" codec name so the stock client and server transports
// carry JSON frames without either side needing .proto-compiled types.
// Reflection therefore reports StreamService's name and method routing
// accurately but cannot resolve its message shapes for generic
// introspection tools (grpcurl and friends) — callers are expected to
// know the JSON shape documented on SubscribeRequest and the outbound
// wire message, same as any other JSON API.
package api
