package providers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"cv-analyser/internal/config"
	"cv-analyser/pkg/models"
)

const defaultClaudeMaxTokens = 1000

// ClaudeProvider implements the provider capability using Anthropic's Claude
type ClaudeProvider struct {
	config config.ProviderConfig
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg config.ProviderConfig) *ClaudeProvider {
	return &ClaudeProvider{config: cfg}
}

func (cp *ClaudeProvider) Name() models.ProviderName { return models.ProviderClaude }

func (cp *ClaudeProvider) DefaultModel() string { return cp.config.Model }

// Complete sends the instruction and document as one user message. The SDK
// sets the anthropic-version header.
func (cp *ClaudeProvider) Complete(ctx context.Context, req models.ProviderRequest) (string, error) {
	if req.Credential == "" {
		return "", errMissingCredential
	}

	ctx, cancel := withTimeout(ctx, cp.config.Timeout)
	defer cancel()

	opts := []option.RequestOption{
		option.WithAPIKey(req.Credential),
		option.WithMaxRetries(0),
	}
	if baseURL := firstNonEmpty(req.Endpoint, cp.config.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = cp.config.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(firstNonEmpty(req.Model, cp.config.Model)),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: req.CombinedPrompt()},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	response, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	return response.Content[0].AsText().Text, nil
}
