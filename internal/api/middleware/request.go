package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"cv-analyser/pkg/models"
	"cv-analyser/pkg/utils"
)

// RequestValidation assigns a request ID and caps the request body at
// maxBodyBytes. Oversized bodies with a declared length are rejected with 413
// up front; others fail with *http.MaxBytesError while being read.
func RequestValidation(maxBodyBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" || len(requestID) > 128 {
				requestID = utils.GenerateRequestID()
			}
			c.Set("request_id", requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			if maxBodyBytes > 0 && c.Request().Body != nil {
				if c.Request().ContentLength > maxBodyBytes {
					return c.JSON(http.StatusRequestEntityTooLarge, models.DetailResponse{
						Detail:    utils.NewPayloadTooLargeError(fmt.Sprintf("limit is %d bytes", maxBodyBytes)).Error(),
						RequestID: requestID,
					})
				}
				c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes)
			}

			return next(c)
		}
	}
}
