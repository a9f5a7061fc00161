package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"cv-analyser/internal/config"
	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
)

// MistralProvider talks to a local Ollama-style chat endpoint serving mistral
type MistralProvider struct {
	config config.ProviderConfig
	client *http.Client
	logger logging.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type mistralResponse struct {
	Message *chatMessage `json:"message"`
	Error   string       `json:"error,omitempty"`
}

func NewMistralProvider(cfg config.ProviderConfig, logger logging.Logger) *MistralProvider {
	return &MistralProvider{
		config: cfg,
		client: &http.Client{},
		logger: logging.OrGlobal(logger),
	}
}

func (p *MistralProvider) Name() models.ProviderName { return models.ProviderMistral }

func (p *MistralProvider) DefaultModel() string { return p.config.Model }

// Complete posts role-tagged messages to the configured endpoint. The
// credential is optional; when present it is sent as a bearer token.
func (p *MistralProvider) Complete(ctx context.Context, req models.ProviderRequest) (string, error) {
	endpoint := firstNonEmpty(req.Endpoint, p.config.BaseURL)
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q", endpoint)
	}

	ctx, cancel := withTimeout(ctx, p.config.Timeout)
	defer cancel()

	body := mistralRequest{
		Model:  firstNonEmpty(req.Model, p.config.Model),
		Stream: false,
	}
	if req.SystemPrompt != "" && req.UserContent != "" {
		body.Messages = []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserContent},
		}
	} else {
		body.Messages = []chatMessage{{Role: "user", Content: req.CombinedPrompt()}}
	}

	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(options) > 0 {
		body.Options = options
	}

	headers := map[string]string{}
	if req.Credential != "" {
		headers["Authorization"] = "Bearer " + req.Credential
	}

	raw, _, err := sendJSON(ctx, p.client, endpoint, body, headers, p.logger)
	if err != nil {
		return "", err
	}

	var out mistralResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("upstream error: %s", out.Error)
	}
	if out.Message == nil {
		return "", errEmptyResponse
	}

	return out.Message.Content, nil
}
