package mux

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/soheilhy/cmux"

	"cv-analyser/internal/config"
	"cv-analyser/internal/grpc/server"
	"cv-analyser/internal/logging"
)

// Multiplexer serves the HTTP API and the gRPC health service on one port.
// When gRPC is disabled the listener is handed straight to the HTTP server.
type Multiplexer struct {
	cfg    *config.Config
	logger logging.Logger

	// Servers
	grpcServer *server.Server
	httpServer *http.Server

	// Multiplexer
	mux      cmux.CMux
	listener net.Listener

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMultiplexer creates a new protocol multiplexer. grpcServer may be nil.
func NewMultiplexer(cfg *config.Config, grpcServer *server.Server, httpHandler http.Handler, logger logging.Logger) *Multiplexer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Multiplexer{
		cfg:        cfg,
		logger:     logging.OrGlobal(logger),
		grpcServer: grpcServer,
		ctx:        ctx,
		cancel:     cancel,
		httpServer: &http.Server{
			Handler:           httpHandler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}
}

// Start binds address and serves until Stop is called
func (m *Multiplexer) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	m.listener = listener

	httpListener := listener
	if m.grpcServer != nil {
		m.mux = cmux.New(listener)

		// grpc-go clients wait for the server SETTINGS frame before sending headers
		grpcListener := m.mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
		httpListener = m.mux.Match(cmux.Any())

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.grpcServer.Start(grpcListener); err != nil && !errors.Is(err, cmux.ErrListenerClosed) {
				m.logger.Error("gRPC server failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.logger.Info("Starting HTTP server", map[string]interface{}{"address": listener.Addr().String()})
		if err := m.httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			m.logger.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if m.mux != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.mux.Serve(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, cmux.ErrServerClosed) {
				m.logger.Error("Multiplexer failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	m.logger.Info("Multiplexer started", map[string]interface{}{
		"address":      listener.Addr().String(),
		"grpc_enabled": m.grpcServer != nil,
	})
	return nil
}

// Stop gracefully shuts down the multiplexer and both servers
func (m *Multiplexer) Stop(ctx context.Context) error {
	m.logger.Info("Stopping multiplexer...")
	m.cancel()

	var shutdownErr error
	if err := m.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, cmux.ErrListenerClosed) {
		m.logger.Error("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
		shutdownErr = err
	}

	if m.grpcServer != nil {
		m.grpcServer.Stop()
	}

	if m.mux != nil {
		m.mux.Close()
	} else if m.listener != nil {
		_ = m.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Multiplexer stopped gracefully")
	case <-ctx.Done():
		m.logger.Warn("Multiplexer shutdown timed out")
		if shutdownErr == nil {
			shutdownErr = ctx.Err()
		}
	}

	return shutdownErr
}

// Wait blocks until every server goroutine has returned
func (m *Multiplexer) Wait() {
	m.wg.Wait()
}

// IsHealthy reports whether the multiplexer is listening and not stopping
func (m *Multiplexer) IsHealthy() bool {
	return m.ctx.Err() == nil && m.listener != nil
}

// GetAddress returns the address the multiplexer is listening on
func (m *Multiplexer) GetAddress() string {
	if m.listener != nil {
		return m.listener.Addr().String()
	}
	return ""
}
