package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"eng", "fra"}, cfg.Extractor.Languages)
	assert.Equal(t, "gpt-4", cfg.Providers.OpenAI.Model)
	assert.Equal(t, "http://localhost:11434/api/chat", cfg.Providers.Mistral.BaseURL)
	assert.Equal(t, 1000, cfg.Providers.Claude.MaxTokens)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("USERS", `{"alice":"pw"}`)
	t.Setenv("PORT", "9001")
	t.Setenv("TESSERACT_LANG", "eng+fra+deu")
	t.Setenv("MISTRAL_URL", "http://ollama:11434/api/chat")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.SecretKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, map[string]string{"alice": "pw"}, cfg.Auth.Users)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, []string{"eng", "fra", "deu"}, cfg.Extractor.Languages)
	assert.Equal(t, "http://ollama:11434/api/chat", cfg.Providers.Mistral.BaseURL)
}

func TestLoadConfigRejectsMalformedUsers(t *testing.T) {
	t.Setenv("USERS", `{not json`)

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USERS")
}

func TestLoadConfigYAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_OPENAI_MODEL", "gpt-4o")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8081
providers:
  openai:
    model: ${TEST_OPENAI_MODEL}
extractor:
  dpi: 200
  max_pages: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.Providers.OpenAI.Model)
	assert.Equal(t, 200, cfg.Extractor.DPI)
	assert.Equal(t, 5, cfg.Extractor.MaxPages)
	// untouched sections keep their defaults
	assert.Equal(t, "claude-3-opus-20240229", cfg.Providers.Claude.Model)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Auth.Algorithm = "RS256"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Auth.SecretKey = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Extractor.Languages = nil
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.RequestTimeout = 0
	assert.ErrorContains(t, cfg.Validate(), "request_timeout")

	cfg = Default()
	cfg.Extractor.DPI = -1
	assert.ErrorContains(t, cfg.Validate(), "dpi")
}

func TestLoadConfigRejectsZeroRequestTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  request_timeout: 0s\n"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "request_timeout")
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 170*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "super-secret-key", cfg.Auth.SecretKey)
	require.Len(t, cfg.Logging.Adapters, 2)
	assert.True(t, cfg.Logging.Adapters[0].Enabled)
	assert.False(t, cfg.Logging.Adapters[1].Enabled)
	assert.True(t, cfg.GRPC.Enabled)
}
