package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/api/validation"
	"cv-analyser/internal/config"
	"cv-analyser/internal/extractor"
	"cv-analyser/internal/llm"
	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
	"cv-analyser/pkg/utils"
)

// multipart parts above this size are spooled to disk
const multipartMemory = 8 << 20

// TextExtractor turns an uploaded document into text
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (*extractor.ExtractionResult, error)
}

// ProviderGateway performs language-model calls
type ProviderGateway interface {
	Supports(name models.ProviderName) bool
	CallProvider(ctx context.Context, req models.ProviderRequest) (*models.ProviderResponse, error)
}

// credentialFields maps each provider to the form field holding its API key
var credentialFields = map[models.ProviderName]string{
	models.ProviderOpenAI: "openai_api_key",
	models.ProviderGemini: "gemini_api_key",
	models.ProviderClaude: "claude_api_key",
	models.ProviderGroq:   "groq_api_key",
}

// AnalyzeCVHandler handles POST /analyze-cv: extract the uploaded document
// and send it with the caller's prompt to the selected provider.
func AnalyzeCVHandler(cfg *config.Config, ex TextExtractor, gateway ProviderGateway, logger logging.Logger) echo.HandlerFunc {
	logger = logging.OrGlobal(logger)

	return func(c echo.Context) error {
		requestID := requestIDFrom(c)
		log := logger.WithField("request_id", requestID)

		if err := c.Request().ParseMultipartForm(multipartMemory); err != nil {
			if isBodyTooLarge(err) {
				return respondDetail(c, utils.NewPayloadTooLargeError(fmt.Sprintf("limit is %d bytes", cfg.Server.MaxUploadBytes)), requestID)
			}
			return respondDetail(c, utils.NewValidationError("expected a multipart form: "+err.Error()), requestID)
		}

		var form models.AnalyzeCVForm
		if err := c.Bind(&form); err != nil {
			return respondDetail(c, utils.NewValidationError("invalid form: "+err.Error()), requestID)
		}
		if err := requestValidator.Struct(&form); err != nil {
			return respondDetail(c, utils.NewValidationError(validation.Describe(err)), requestID)
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return respondDetail(c, utils.NewValidationError("missing required fields: file"), requestID)
		}

		provider := models.ProviderName(strings.ToLower(utils.GetStringOrDefault(form.AIProvider, string(models.ProviderOpenAI))))
		if !gateway.Supports(provider) {
			log.Warn("unsupported provider requested", map[string]interface{}{"provider": string(provider)})
			return respondDetail(c, utils.NewBadRequestError(fmt.Sprintf("Unsupported AI provider: %s", provider)), requestID)
		}

		req := models.ProviderRequest{
			Provider:     provider,
			Model:        strings.TrimSpace(form.Model),
			SystemPrompt: form.Prompt,
		}
		switch provider {
		case models.ProviderMistral:
			req.Endpoint = utils.GetStringOrDefault(form.MistralURL, cfg.Providers.Mistral.BaseURL)
		default:
			req.Credential = credentialFor(provider, &form)
			if req.Credential == "" {
				field := credentialFields[provider]
				if field == "" {
					field = "api key"
				}
				return respondDetail(c, utils.NewValidationError(fmt.Sprintf("%s is required for provider %s", field, provider)), requestID)
			}
		}
		if provider == models.ProviderClaude {
			req.MaxTokens = cfg.Providers.Claude.MaxTokens
		}

		data, err := readUpload(fileHeader)
		if err != nil {
			if isBodyTooLarge(err) {
				return respondDetail(c, utils.NewPayloadTooLargeError(err.Error()), requestID)
			}
			return respondDetail(c, utils.NewValidationError("unreadable file: "+err.Error()), requestID)
		}

		log.Info("analysis requested", map[string]interface{}{
			"provider": string(provider),
			"filename": fileHeader.Filename,
			"bytes":    len(data),
		})

		ctx := c.Request().Context()
		result, err := ex.Extract(ctx, data)
		if err != nil {
			var extErr *extractor.ExtractionError
			if errors.As(err, &extErr) {
				return respondDetail(c, utils.NewExtractionError(extErr.Error()), requestID)
			}
			return respondDetail(c, utils.NewExtractionError(err.Error()), requestID)
		}
		req.UserContent = result.Text

		resp, err := gateway.CallProvider(ctx, req)
		if err != nil {
			return respondProviderError(c, err, requestID)
		}

		log.Info("analysis completed", map[string]interface{}{
			"provider":      resp.Engine,
			"filename":      fileHeader.Filename,
			"used_fallback": result.UsedFallback,
			"method":        result.Method,
			"chars":         len(result.Text),
		})

		return c.JSON(http.StatusOK, models.AnalyzeCVResponse{
			Engine:   resp.Engine,
			Filename: fileHeader.Filename,
			Analysis: resp.RawText,
		})
	}
}

func credentialFor(provider models.ProviderName, form *models.AnalyzeCVForm) string {
	var key string
	switch provider {
	case models.ProviderOpenAI:
		key = form.OpenAIAPIKey
	case models.ProviderGemini:
		key = form.GeminiAPIKey
	case models.ProviderClaude:
		key = form.ClaudeAPIKey
	case models.ProviderGroq:
		key = form.GroqAPIKey
	}
	return strings.TrimSpace(key)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func respondProviderError(c echo.Context, err error, requestID string) error {
	if errors.Is(err, llm.ErrUnsupportedProvider) {
		return respondDetail(c, utils.NewBadRequestError("Unsupported AI provider"), requestID)
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		return respondDetail(c, utils.NewLLMError(perr.Detail()), requestID)
	}
	return respondDetail(c, utils.NewLLMError(llm.Sanitize(err.Error())), requestID)
}
