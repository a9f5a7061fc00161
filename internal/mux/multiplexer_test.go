package mux

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"cv-analyser/internal/config"
	"cv-analyser/internal/grpc/server"
	"cv-analyser/internal/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"API is running."}`))
	})
}

func stop(t *testing.T, m *Multiplexer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, m.Stop(ctx))
	assert.False(t, m.IsHealthy())
}

func getRoot(t *testing.T, addr string) string {
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	return string(body)
}

func TestMultiplexerServesHTTPAndGRPCOnOnePort(t *testing.T) {
	cfg := config.Default()
	logger := logging.NewNopLogger()

	m := NewMultiplexer(cfg, server.NewServer(cfg, logger), okHandler(), logger)
	require.NoError(t, m.Start("127.0.0.1:0"))
	defer stop(t, m)

	assert.True(t, m.IsHealthy())
	addr := m.GetAddress()

	assert.Contains(t, getRoot(t, addr), "API is running.")

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: server.ServiceAnalyzer})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestMultiplexerHTTPOnly(t *testing.T) {
	cfg := config.Default()
	cfg.GRPC.Enabled = false

	m := NewMultiplexer(cfg, nil, okHandler(), logging.NewNopLogger())
	require.NoError(t, m.Start("127.0.0.1:0"))
	defer stop(t, m)

	assert.Contains(t, getRoot(t, m.GetAddress()), "API is running.")
}

func TestMultiplexerStartFailsOnBadAddress(t *testing.T) {
	m := NewMultiplexer(config.Default(), nil, okHandler(), logging.NewNopLogger())
	err := m.Start("256.0.0.1:bad")
	require.Error(t, err)
	assert.Empty(t, m.GetAddress())
}
