// Package grpc serves the standard grpc.health.v1 service and keeps its
// status in sync with the storage backends.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/repomanager"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "secretkeeper"

type GRPCServer struct {
	address string
	logger  logging.Logger
	health  *health.Server
	monitor *HealthMonitor
}

func NewGRPCServer(address string, l logging.Logger, checks map[string]repomanager.Healthcheck, m metrics.MetricsCollector, interval time.Duration) *GRPCServer {
	logger := l.With("module", "grpc_server")
	hs := health.NewServer()

	return &GRPCServer{
		address: address,
		logger:  logger,
		health:  hs,
		monitor: NewHealthMonitor(hs, checks, m, logger, interval),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)
	return s.Serve(ctx, listen)
}

// Serve runs the health service on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.monitor.CheckOnce(ctx)
	go s.monitor.Run(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		// flips every service to NOT_SERVING for watchers
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
