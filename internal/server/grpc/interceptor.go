package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	args := []any{
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration_ms", float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond),
	}
	if err != nil {
		s.logger.Warn(ctx, "grpc_request", append(args, "error", err)...)
	} else {
		s.logger.Debug(ctx, "grpc_request", args...)
	}

	return resp, err
}
