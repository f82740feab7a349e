package middleware

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ContextInterceptor copies caller identity, language and request id from metadata into the
// request context.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if val := md.Get("x-customer-id"); len(val) > 0 {
				ctx = auth.WithCustomerID(ctx, val[0])
			}
			if val := md.Get("accept-language"); len(val) > 0 {
				ctx = auth.WithLanguage(ctx, val[0])
			}
		}
		requestID := auth.GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = auth.WithRequestID(ctx, requestID)
		return handler(ctx, req)
	}
}

func LoggingInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("request_id", auth.GetRequestID(ctx)),
			zap.Duration("latency", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil && status.Code(err) == codes.Internal {
			log.Error("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			log.Info("grpc request", fields...)
		}
		return resp, err
	}
}

func RecoveryInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in grpc handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
