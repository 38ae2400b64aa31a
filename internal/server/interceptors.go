package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/matchbox/internal/metrics"
)

// UnaryLogging logs every unary call with its status code and duration.
// Server-side failures are logged at error level, client errors at info.
func UnaryLogging(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(log, info.FullMethod, status.Code(err), time.Since(start), err)
		return resp, err
	}
}

func StreamLogging(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		log.Debug("grpc stream opened", "method", info.FullMethod)
		err := handler(srv, ss)
		logCall(log, info.FullMethod, status.Code(err), time.Since(start), err)
		return err
	}
}

func UnaryMetrics() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		metrics.RecordRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// StreamMetrics counts open server streams as live subscriptions.
func StreamMetrics() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		done := metrics.SubscriptionOpened("grpc")
		defer done()
		start := time.Now()
		err := handler(srv, ss)
		metrics.RecordRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
		return err
	}
}

func logCall(log *slog.Logger, method string, code codes.Code, d time.Duration, err error) {
	attrs := []any{"method", method, "code", code.String(), "duration", d}
	switch code {
	case codes.OK:
		log.Debug("grpc call", attrs...)
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		log.Error("grpc call failed", append(attrs, "err", err)...)
	default:
		log.Info("grpc call rejected", append(attrs, "err", err)...)
	}
}
