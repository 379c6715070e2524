package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/log"
)

// Server is the streaming-RPC endpoint (C7): one gRPC service backed by
// the fan-out hub, plus health checking and conditional reflection.
type Server struct {
	hub        *events.Hub
	grpcServer *grpc.Server
	health     *health.Server
	logger     zerolog.Logger
}

// NewServer builds the gRPC server and registers every service. It
// does not start listening — call Serve for that. reflection is
// registered unless production is true, matching the origin-policy
// split the rest of C7 makes on NODE_ENV.
func NewServer(hub *events.Hub, production bool) *Server {
	s := &Server{
		hub:    hub,
		logger: log.WithComponent("api"),
	}

	s.grpcServer = grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    60 * time.Second,
			Timeout: 20 * time.Second,
		}),
		grpc.MaxConcurrentStreams(256),
		grpc.ChainStreamInterceptor(s.streamInterceptor),
	)
	s.grpcServer.RegisterService(&streamServiceDesc, s)

	s.health = health.NewServer()
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("pairstream.StreamService", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	if !production {
		reflection.Register(s.grpcServer)
	}

	return s
}

// Serve blocks, accepting connections on addr until ctx is canceled,
// at which point it drains in-flight streams with GracefulStop.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api: listen on %s: %w", addr, err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	s.logger.Info().Str("addr", addr).Msg("gRPC stream server listening")

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return fmt.Errorf("api: serve: %w", err)
	}
}
