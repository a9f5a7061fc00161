package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/logging"
)

// RequestLogger logs one structured entry per request
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	logger = logging.OrGlobal(logger)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			requestID, _ := c.Get("request_id").(string)
			fields := map[string]interface{}{
				"request_id":  requestID,
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   c.RealIP(),
			}
			if err != nil {
				fields["error"] = err.Error()
			}

			switch status := c.Response().Status; {
			case status >= 500:
				logger.Error("request completed", fields)
			case status >= 400:
				logger.Warn("request completed", fields)
			default:
				logger.Info("request completed", fields)
			}
			return nil
		}
	}
}
