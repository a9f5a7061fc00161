package models

// ProviderName identifies one upstream language-model service
type ProviderName string

const (
	ProviderOpenAI  ProviderName = "openai"
	ProviderGemini  ProviderName = "gemini"
	ProviderGroq    ProviderName = "groq"
	ProviderClaude  ProviderName = "claude"
	ProviderMistral ProviderName = "mistral"
)

// ProviderRequest is the provider-independent form of one outbound call.
// It is built once per call and never modified afterwards.
type ProviderRequest struct {
	Provider     ProviderName
	Credential   string
	Model        string
	SystemPrompt string
	UserContent  string

	// Endpoint overrides the provider base URL (mistral: full chat URL)
	Endpoint    string
	MaxTokens   int
	Temperature *float64
}

// ProviderResponse is the normalized result of a provider call
type ProviderResponse struct {
	Engine  string `json:"engine"`
	RawText string `json:"raw_text"`
}

// CombinedPrompt joins the instruction and the content into one message body
func (r *ProviderRequest) CombinedPrompt() string {
	switch {
	case r.SystemPrompt == "":
		return r.UserContent
	case r.UserContent == "":
		return r.SystemPrompt
	default:
		return r.SystemPrompt + "\n\n" + r.UserContent
	}
}
