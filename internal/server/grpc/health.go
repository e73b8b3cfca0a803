package grpcserver

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/GooseXRL8/flowerlove/internal/elapsed"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// Refresh sets the overall and store health from the runtime.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.rt.CheckHealth(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn("store unhealthy", logpkg.Err(err))
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *Server) watchHealth(ctx context.Context) *elapsed.Subscription {
	return elapsed.Every(ctx, s.rt.Clock(), checkInterval, func(time.Time) {
		s.Refresh(ctx)
	}, elapsed.WithLogger(s.logger))
}
