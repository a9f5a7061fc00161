package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
	"cv-analyser/pkg/utils"
)

const (
	// HeaderAPIKey carries the access token
	HeaderAPIKey = "api-key"

	// ContextKeyClaims is where verified claims are stored on the echo context
	ContextKeyClaims = "auth_claims"
)

// TokenFromRequest reads the token from the api-key header, or from a bearer
// Authorization header when api-key is absent.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderAPIKey)); token != "" {
		return token
	}
	authz := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

// Middleware rejects requests without a valid token with 403 and a detail
// body before the handler runs.
func Middleware(s *Service, logger logging.Logger) echo.MiddlewareFunc {
	logger = logging.OrGlobal(logger)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := s.Verify(TokenFromRequest(c.Request()))
			if err != nil {
				requestID, _ := c.Get("request_id").(string)
				logger.Warn("request rejected by token verification", map[string]interface{}{
					"request_id": requestID,
					"path":       c.Path(),
					"reason":     err.Error(),
				})
				ferr := utils.NewForbiddenError(Detail(err))
				return c.JSON(ferr.Code, models.DetailResponse{
					Detail:    ferr.Detail,
					RequestID: requestID,
				})
			}

			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}
