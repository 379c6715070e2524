package api

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/metrics"
)

// SubscribeRequest is the request message for StreamSwapUpdates. An
// empty field matches every value for that dimension.
type SubscribeRequest struct {
	PairID string `json:"pair_id,omitempty"`
	Signer string `json:"signer,omitempty"`
}

// streamServiceDesc describes StreamService by hand, the way a
// protoc-gen-go-grpc _grpc.pb.go file would, but without a .proto
// source: one server-streaming method, dispatched straight to Server.
var streamServiceDesc = grpc.ServiceDesc{
	ServiceName: "pairstream.StreamService",
	HandlerType: (*Server)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamSwapUpdates",
			Handler:       streamSwapUpdatesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "pairstream.proto",
}

func streamSwapUpdatesHandler(srv interface{}, stream grpc.ServerStream) error {
	var req SubscribeRequest
	if err := stream.RecvMsg(&req); err != nil {
		return fmt.Errorf("api: receive subscribe request: %w", err)
	}
	return srv.(*Server).streamSwapUpdates(req, stream)
}

// streamSwapUpdates forwards every OutboundMessage the hub publishes
// that passes req's filter, until the client disconnects or falls
// behind by more than the hub's lag threshold.
func (s *Server) streamSwapUpdates(req SubscribeRequest, stream grpc.ServerStream) error {
	subID := uuid.NewString()
	logger := s.logger.With().Str("subscriber_id", subID).Logger()
	if p, ok := peer.FromContext(stream.Context()); ok && p.Addr != nil {
		logger = logger.With().Str("peer", p.Addr.String()).Logger()
	}
	logger.Info().Msg("gRPC subscriber connected")

	sub := s.hub.Subscribe(subID, events.Filter{PairID: req.PairID, Signer: req.Signer})
	metrics.SubscribersConnected.WithLabelValues("grpc").Inc()
	defer func() {
		s.hub.Unsubscribe(sub)
		metrics.SubscribersConnected.WithLabelValues("grpc").Dec()
		logger.Info().Msg("gRPC subscriber disconnected")
	}()

	for {
		msg, ok, err := sub.Receive(stream.Context().Done())
		if err != nil {
			return status.Error(codes.ResourceExhausted, "client too slow")
		}
		if !ok {
			return nil
		}
		if err := stream.SendMsg(msg); err != nil {
			return fmt.Errorf("api: send to subscriber %s: %w", subID, err)
		}
	}
}
