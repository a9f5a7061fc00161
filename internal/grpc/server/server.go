package server

import (
	"net"
	"os/exec"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"cv-analyser/internal/config"
	"cv-analyser/internal/grpc/interceptors"
	"cv-analyser/internal/logging"
)

// Health service names reported next to the overall "" status
const (
	ServiceAnalyzer = "cv_analyser.Analyzer"
	ServiceOCR      = "cv_analyser.OCR"
)

// Server exposes the standard gRPC health service so orchestrators can probe
// the process on the same port as the HTTP API.
type Server struct {
	cfg    *config.Config
	logger logging.Logger

	grpcServer *grpc.Server
	health     *health.Server

	lookPath func(string) (string, error)
}

func NewServer(cfg *config.Config, logger logging.Logger) *Server {
	logger = logging.OrGlobal(logger)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		health:   health.NewServer(),
		lookPath: exec.LookPath,
	}

	s.grpcServer = grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryInterceptor(logger),
			interceptors.LoggingInterceptor(logger),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecoveryInterceptor(logger),
			interceptors.StreamLoggingInterceptor(logger),
		),
	)

	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	// Enable reflection for debugging
	reflection.Register(s.grpcServer)

	return s
}

// RefreshHealth recomputes the serving status of every reported service
func (s *Server) RefreshHealth() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceAnalyzer, healthpb.HealthCheckResponse_SERVING)

	ocr := healthpb.HealthCheckResponse_SERVING
	for _, bin := range []string{s.cfg.Extractor.Pdftoppm, s.cfg.Extractor.Tesseract} {
		if _, err := s.lookPath(bin); err != nil {
			s.logger.Warn("OCR binary not found, scanned documents cannot be analysed", map[string]interface{}{
				"binary": bin,
			})
			ocr = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(ServiceOCR, ocr)
}

// Start serves gRPC on lis until Stop is called
func (s *Server) Start(lis net.Listener) error {
	s.RefreshHealth()

	s.logger.Info("Starting gRPC server", map[string]interface{}{"address": lis.Addr().String()})

	return s.grpcServer.Serve(lis)
}

// Stop marks every service as not serving and drains in-flight calls
func (s *Server) Stop() {
	s.logger.Info("Shutting down gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
