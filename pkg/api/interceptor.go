package api

import (
	"google.golang.org/grpc"

	"github.com/cuemby/pairstream/pkg/metrics"
)

// streamInterceptor times every streaming call and counts it by method
// and outcome, the same requests-total/duration-by-method shape every
// other transport-facing component in this daemon reports under.
func (s *Server) streamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	timer := metrics.NewTimer()
	err := handler(srv, ss)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.APIRequestsTotal.WithLabelValues(info.FullMethod, outcome).Inc()
	timer.ObserveDurationVec(metrics.APIRequestDuration, info.FullMethod)
	return err
}
