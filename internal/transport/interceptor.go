package transport

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/metrics"
)

// LoggingInterceptor logs every backend call with its duration and gRPC status
func LoggingInterceptor(endpoint string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		duration := time.Since(start)

		if err != nil {
			logger.Warn(ctx).
				Str("method", method).
				Str("endpoint", endpoint).
				Str("grpc_status", status.Code(err).String()).
				Dur("duration", duration).
				Err(err).
				Msg("Backend call failed")
			return err
		}

		logger.Debug(ctx).
			Str("method", method).
			Str("endpoint", endpoint).
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("Backend call completed")
		return nil
	}
}

// MetricsInterceptor records every backend call in m
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		m.ObserveRPC(method, status.Code(err).String(), time.Since(start))
		return err
	}
}
