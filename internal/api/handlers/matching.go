package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/api/validation"
	"cv-analyser/internal/llm"
	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
)

// CandidateMatcher scores a candidate against job offers
type CandidateMatcher interface {
	Match(ctx context.Context, req *models.MatchingRequest) (json.RawMessage, error)
}

// MatchingHandler handles POST /contextuel. Every field is required; the
// provider answer is returned only after it has been validated as JSON
// against the match result schema.
func MatchingHandler(matcher CandidateMatcher, logger logging.Logger) echo.HandlerFunc {
	logger = logging.OrGlobal(logger)

	return func(c echo.Context) error {
		requestID := requestIDFrom(c)
		log := logger.WithField("request_id", requestID)

		var req models.MatchingRequest
		if err := c.Bind(&req); err != nil {
			if isBodyTooLarge(err) {
				return c.JSON(http.StatusRequestEntityTooLarge, models.MatchingErrorResponse{
					Error: "Request body too large",
				})
			}
			return c.JSON(http.StatusBadRequest, models.MatchingErrorResponse{
				Error:   "Invalid request body",
				Details: err.Error(),
			})
		}

		if err := requestValidator.Struct(&req); err != nil {
			log.Warn("matching request rejected", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusBadRequest, models.MatchingErrorResponse{
				Error:   "Missing required fields",
				Details: validation.Describe(err),
			})
		}

		log.Info("matching requested", map[string]interface{}{
			"provider": req.IAType,
			"model":    req.Modele,
		})

		doc, err := matcher.Match(c.Request().Context(), &req)
		if err != nil {
			var (
				perr *llm.ProviderError
				ferr *llm.ResponseFormatError
			)
			switch {
			case errors.Is(err, llm.ErrUnsupportedProvider):
				return c.JSON(http.StatusBadRequest, models.MatchingErrorResponse{
					Error:   "Unsupported AI provider",
					Details: req.IAType,
				})
			case errors.As(err, &perr):
				return c.JSON(http.StatusInternalServerError, models.MatchingErrorResponse{
					Error:   "AI provider error",
					Details: perr.Detail(),
				})
			case errors.As(err, &ferr):
				return c.JSON(http.StatusInternalServerError, models.MatchingErrorResponse{
					Error:   "Invalid AI response",
					Details: ferr.Reason,
				})
			default:
				log.Error("matching failed", map[string]interface{}{"error": llm.Sanitize(err.Error())})
				return c.JSON(http.StatusInternalServerError, models.MatchingErrorResponse{
					Error:   "AI provider error",
					Details: llm.Sanitize(err.Error()),
				})
			}
		}

		return c.JSONBlob(http.StatusOK, doc)
	}
}
