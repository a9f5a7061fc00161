package models

import "encoding/json"

// AnalyzeCVForm is the multipart form accepted by POST /analyze-cv. The
// document itself is read from the "file" part.
type AnalyzeCVForm struct {
	AIProvider   string `form:"ai_provider"`
	Prompt       string `form:"prompt" validate:"required"`
	Model        string `form:"model"`
	OpenAIAPIKey string `form:"openai_api_key"`
	GeminiAPIKey string `form:"gemini_api_key"`
	ClaudeAPIKey string `form:"claude_api_key"`
	GroqAPIKey   string `form:"groq_api_key"`
	MistralURL   string `form:"mistral_url" validate:"omitempty,chat_endpoint"`
}

// MatchingRequest is the JSON body accepted by POST /contextuel
type MatchingRequest struct {
	IAType   string          `json:"ia_type" validate:"required"`
	IAKey    string          `json:"ia_key" validate:"required"`
	Modele   string          `json:"modele" validate:"required"`
	Prompt   string          `json:"prompt" validate:"required"`
	Candidat json.RawMessage `json:"candidat" validate:"required,json_value"`
	Offres   json.RawMessage `json:"offres" validate:"required,json_value"`
}

// TokenRequest is the form accepted by POST /generate-token
type TokenRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}
