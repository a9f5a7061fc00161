package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/api/routes"
	"cv-analyser/internal/auth"
	"cv-analyser/internal/config"
	"cv-analyser/internal/extractor"
	"cv-analyser/internal/grpc/server"
	"cv-analyser/internal/llm"
	"cv-analyser/internal/logging"
	"cv-analyser/internal/matching"
	"cv-analyser/internal/mux"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting CV analyser", map[string]interface{}{
		"grpc_enabled": cfg.GRPC.Enabled,
		"ocr_langs":    cfg.Extractor.Languages,
	})

	authService, err := auth.NewService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize authentication", map[string]interface{}{"error": err.Error()})
	}
	if len(cfg.Auth.Users) == 0 {
		logger.Warn("No users configured, /generate-token will reject every login")
	}

	gateway := llm.NewGatewayFromConfig(cfg, logger)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	routes.SetupRoutes(e, routes.Dependencies{
		Config:    cfg,
		Extractor: extractor.New(cfg, logger),
		Gateway:   gateway,
		Matcher:   matching.NewMatcher(gateway, logger),
		Auth:      authService,
		Logger:    logger,
	})

	var grpcServer *server.Server
	if cfg.GRPC.Enabled {
		grpcServer = server.NewServer(cfg, logger)
	}

	m := mux.NewMultiplexer(cfg, grpcServer, e, logger)
	if err := m.Start(cfg.Address()); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{"error": err.Error()})
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.Stop(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Server shutdown complete")
}
