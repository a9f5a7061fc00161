package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/api/validation"
	"cv-analyser/internal/auth"
	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
	"cv-analyser/pkg/utils"
)

// GenerateTokenHandler handles POST /generate-token
func GenerateTokenHandler(authService *auth.Service, logger logging.Logger) echo.HandlerFunc {
	logger = logging.OrGlobal(logger)

	return func(c echo.Context) error {
		requestID := requestIDFrom(c)

		var req models.TokenRequest
		if err := c.Bind(&req); err != nil {
			return respondDetail(c, utils.NewValidationError("invalid form: "+err.Error()), requestID)
		}
		if err := requestValidator.Struct(&req); err != nil {
			return respondDetail(c, utils.NewValidationError(validation.Describe(err)), requestID)
		}

		token, err := authService.Login(req.Username, req.Password)
		if err != nil {
			logger.Warn("token request rejected", map[string]interface{}{
				"request_id": requestID,
				"username":   req.Username,
			})
			if errors.Is(err, auth.ErrInvalidCredentials) {
				uerr := utils.NewUnauthorizedError(auth.Detail(err))
				return c.JSON(uerr.Code, models.DetailResponse{
					Detail:    uerr.Detail,
					RequestID: requestID,
				})
			}
			return respondDetail(c, utils.NewInternalServerError("could not issue token"), requestID)
		}

		logger.Info("token issued", map[string]interface{}{
			"request_id": requestID,
			"username":   req.Username,
		})

		return c.JSON(http.StatusOK, models.TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}
