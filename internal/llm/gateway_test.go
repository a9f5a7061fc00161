package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-analyser/internal/config"
	"cv-analyser/internal/logging"
	"cv-analyser/internal/logging/adapters"
	"cv-analyser/pkg/models"
)

type stubProvider struct {
	name  models.ProviderName
	model string
	text  string
	err   error
	got   []models.ProviderRequest
}

func (s *stubProvider) Name() models.ProviderName { return s.name }
func (s *stubProvider) DefaultModel() string      { return s.model }

func (s *stubProvider) Complete(ctx context.Context, req models.ProviderRequest) (string, error) {
	s.got = append(s.got, req)
	return s.text, s.err
}

func newMemLogger() (logging.Logger, *adapters.MemoryAdapter) {
	mem := adapters.NewMemoryAdapter("mem")
	logger := logging.NewMultiLogger()
	_ = logger.AddAdapter(mem)
	return logger, mem
}

func TestCallProviderDispatchesAndNormalizes(t *testing.T) {
	stub := &stubProvider{name: models.ProviderOpenAI, model: "gpt-4", text: "Strong candidate"}
	logger, mem := newMemLogger()
	g := NewGateway(logger, stub)

	resp, err := g.CallProvider(context.Background(), models.ProviderRequest{
		Provider:     models.ProviderOpenAI,
		Credential:   "sk-secret-value-123",
		SystemPrompt: "p",
		UserContent:  "t",
	})
	require.NoError(t, err)

	assert.Equal(t, &models.ProviderResponse{Engine: "openai", RawText: "Strong candidate"}, resp)
	require.Len(t, stub.got, 1)
	assert.Equal(t, "gpt-4", stub.got[0].Model)
	assert.Equal(t, []string{"provider call started", "provider call completed"}, mem.Messages())

	for _, e := range mem.Entries() {
		for _, v := range e.Fields {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "sk-secret-value-123")
			}
		}
	}
}

func TestCallProviderKeepsExplicitModel(t *testing.T) {
	stub := &stubProvider{name: models.ProviderGroq, model: "llama3-70b-8192"}
	g := NewGateway(logging.NewNopLogger(), stub)

	_, err := g.CallProvider(context.Background(), models.ProviderRequest{Provider: models.ProviderGroq, Model: "mixtral"})
	require.NoError(t, err)
	assert.Equal(t, "mixtral", stub.got[0].Model)
}

func TestCallProviderUnsupported(t *testing.T) {
	stub := &stubProvider{name: models.ProviderOpenAI}
	g := NewGateway(logging.NewNopLogger(), stub)

	_, err := g.CallProvider(context.Background(), models.ProviderRequest{Provider: "cohere"})
	require.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Empty(t, stub.got)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.ProviderName("cohere"), perr.Provider)
	assert.Contains(t, perr.Detail(), `"cohere"`)
}

func TestCallProviderWrapsFailure(t *testing.T) {
	cause := errors.New(`POST "https://api.example/v1?key=sk-leaked-abcdefgh": 401 Unauthorized`)
	stub := &stubProvider{name: models.ProviderClaude, model: "claude-3-opus-20240229", err: cause}
	logger, mem := newMemLogger()
	g := NewGateway(logger, stub)

	_, err := g.CallProvider(context.Background(), models.ProviderRequest{
		Provider:   models.ProviderClaude,
		Credential: "sk-leaked-abcdefgh",
	})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.ProviderClaude, perr.Provider)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, perr.Detail(), "sk-leaked-abcdefgh")
	assert.NotContains(t, perr.Error(), "sk-leaked-abcdefgh")
	assert.Contains(t, perr.Detail(), "401 Unauthorized")

	entries := mem.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "provider call failed", entries[1].Message)
	assert.NotContains(t, entries[1].Fields["error"], "sk-leaked-abcdefgh")
}

func TestProvidersAreSorted(t *testing.T) {
	g := NewGatewayFromConfig(config.Default(), logging.NewNopLogger())

	assert.Equal(t, []models.ProviderName{
		models.ProviderClaude,
		models.ProviderGemini,
		models.ProviderGroq,
		models.ProviderMistral,
		models.ProviderOpenAI,
	}, g.Providers())
	assert.True(t, g.Supports(models.ProviderMistral))
	assert.False(t, g.Supports("cohere"))
}

func TestGatewayFromConfigServerErrorIsProviderError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"internal"}}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Providers.OpenAI.BaseURL = server.URL
	g := NewGatewayFromConfig(cfg, logging.NewNopLogger())

	_, err := g.CallProvider(context.Background(), models.ProviderRequest{
		Provider:    models.ProviderOpenAI,
		Credential:  "sk-test",
		UserContent: "hello",
	})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.ProviderOpenAI, perr.Provider)
	assert.True(t, strings.HasPrefix(perr.Error(), "openai provider error"))
	assert.Equal(t, int32(1), hits.Load())
}
