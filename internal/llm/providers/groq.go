package providers

import (
	"cv-analyser/internal/config"
	"cv-analyser/pkg/models"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqProvider uses groq's OpenAI-compatible endpoint. Groq receives the
// instruction and the document as one user message.
func NewGroqProvider(cfg config.ProviderConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGroqBaseURL
	}
	return &OpenAIProvider{
		name:     models.ProviderGroq,
		config:   cfg,
		userOnly: true,
	}
}
