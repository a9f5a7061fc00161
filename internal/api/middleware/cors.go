package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"cv-analyser/pkg/utils"
)

// CORSConfig returns CORS middleware configuration for the given origins
func CORSConfig(allowedOrigins []string) echo.MiddlewareFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "api-key",
		},
		ExposeHeaders: []string{echo.HeaderXRequestID},
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: !utils.Contains(allowedOrigins, "*"),
		MaxAge:           86400, // 24 hours
	})
}
