package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"cv-analyser/internal/logging"
	"cv-analyser/pkg/utils"
)

// requestIDFromContext returns the caller's x-request-id, or a fresh one
func requestIDFromContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return utils.GenerateRequestID()
}

func statusCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

// LoggingInterceptor returns a gRPC unary interceptor that logs requests and responses
func LoggingInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	logger = logging.OrGlobal(logger)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()
		requestID := requestIDFromContext(ctx)

		logger.Debug("gRPC request started", map[string]interface{}{
			"request_id": requestID,
			"method":     info.FullMethod,
		})

		resp, err := handler(ctx, req)

		logFields := map[string]interface{}{
			"request_id":  requestID,
			"method":      info.FullMethod,
			"duration_ms": time.Since(startTime).Milliseconds(),
			"status_code": statusCode(err).String(),
		}

		if err != nil {
			logFields["error"] = err.Error()
			logger.Error("gRPC request failed", logFields)
		} else {
			logger.Info("gRPC request completed", logFields)
		}

		return resp, err
	}
}

// StreamLoggingInterceptor returns a gRPC streaming interceptor that logs stream operations
func StreamLoggingInterceptor(logger logging.Logger) grpc.StreamServerInterceptor {
	logger = logging.OrGlobal(logger)

	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		startTime := time.Now()
		requestID := requestIDFromContext(ss.Context())

		logger.Debug("gRPC stream started", map[string]interface{}{
			"request_id": requestID,
			"method":     info.FullMethod,
		})

		err := handler(srv, ss)

		logFields := map[string]interface{}{
			"request_id":  requestID,
			"method":      info.FullMethod,
			"duration_ms": time.Since(startTime).Milliseconds(),
			"status_code": statusCode(err).String(),
		}

		// watchers end with Canceled when the client goes away
		if err != nil && statusCode(err) != codes.Canceled {
			logFields["error"] = err.Error()
			logger.Error("gRPC stream failed", logFields)
		} else {
			logger.Info("gRPC stream completed", logFields)
		}

		return err
	}
}
