package llm

import (
	"cv-analyser/internal/config"
	"cv-analyser/internal/llm/providers"
	"cv-analyser/internal/logging"
)

// NewGatewayFromConfig registers every built-in provider with its configured
// defaults. Adding a provider is one line here.
func NewGatewayFromConfig(cfg *config.Config, logger logging.Logger) *Gateway {
	logger = logging.OrGlobal(logger)

	return NewGateway(logger,
		providers.NewOpenAIProvider(cfg.Providers.OpenAI),
		providers.NewGeminiProvider(cfg.Providers.Gemini),
		providers.NewGroqProvider(cfg.Providers.Groq),
		providers.NewClaudeProvider(cfg.Providers.Claude),
		providers.NewMistralProvider(cfg.Providers.Mistral, logger),
	)
}
