package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"cv-analyser/internal/config"
	"cv-analyser/pkg/models"
)

// OpenAIProvider talks to the OpenAI chat completions API and to any
// OpenAI-compatible endpoint (groq). A client is built per call so the
// credential never outlives the request.
type OpenAIProvider struct {
	name   models.ProviderName
	config config.ProviderConfig

	// userOnly folds the instruction into a single user message
	userOnly bool
}

// NewOpenAIProvider sends the instruction as a system message and the
// document as a user message.
func NewOpenAIProvider(cfg config.ProviderConfig) *OpenAIProvider {
	return &OpenAIProvider{name: models.ProviderOpenAI, config: cfg}
}

func (p *OpenAIProvider) Name() models.ProviderName { return p.name }

func (p *OpenAIProvider) DefaultModel() string { return p.config.Model }

func (p *OpenAIProvider) Complete(ctx context.Context, req models.ProviderRequest) (string, error) {
	if req.Credential == "" {
		return "", errMissingCredential
	}

	ctx, cancel := withTimeout(ctx, p.config.Timeout)
	defer cancel()

	opts := []option.RequestOption{
		option.WithAPIKey(req.Credential),
		option.WithMaxRetries(0),
	}
	if baseURL := firstNonEmpty(req.Endpoint, p.config.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(firstNonEmpty(req.Model, p.config.Model)),
		Messages: p.messages(req),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if maxTokens := req.MaxTokens; maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) messages(req models.ProviderRequest) []openai.ChatCompletionMessageParamUnion {
	if p.userOnly || req.SystemPrompt == "" {
		return []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.CombinedPrompt()),
		}
	}
	return []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.SystemPrompt),
		openai.UserMessage(req.UserContent),
	}
}
