package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"cv-analyser/internal/config"
	"cv-analyser/pkg/models"
)

// GeminiProvider calls Google's Gemini API through the genai SDK
type GeminiProvider struct {
	config config.ProviderConfig
}

func NewGeminiProvider(cfg config.ProviderConfig) *GeminiProvider {
	return &GeminiProvider{config: cfg}
}

func (p *GeminiProvider) Name() models.ProviderName { return models.ProviderGemini }

func (p *GeminiProvider) DefaultModel() string { return p.config.Model }

func (p *GeminiProvider) Complete(ctx context.Context, req models.ProviderRequest) (string, error) {
	if req.Credential == "" {
		return "", errMissingCredential
	}

	ctx, cancel := withTimeout(ctx, p.config.Timeout)
	defer cancel()

	clientConfig := &genai.ClientConfig{
		APIKey:  req.Credential,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := firstNonEmpty(req.Endpoint, p.config.BaseURL); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	// prompt first, then the document body
	var parts []*genai.Part
	if req.SystemPrompt != "" {
		parts = append(parts, genai.NewPartFromText(req.SystemPrompt))
	}
	if req.UserContent != "" {
		parts = append(parts, genai.NewPartFromText(req.UserContent))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var genConfig *genai.GenerateContentConfig
	if req.Temperature != nil || req.MaxTokens > 0 {
		genConfig = &genai.GenerateContentConfig{}
		if req.Temperature != nil {
			genConfig.Temperature = genai.Ptr(float32(*req.Temperature))
		}
		if req.MaxTokens > 0 {
			genConfig.MaxOutputTokens = int32(req.MaxTokens)
		}
	}

	resp, err := client.Models.GenerateContent(ctx, firstNonEmpty(req.Model, p.config.Model), contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errEmptyResponse
	}

	// a blocked answer still has a candidate, just no text parts
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w (finish reason %s)", errEmptyResponse, resp.Candidates[0].FinishReason)
	}
	return text, nil
}
