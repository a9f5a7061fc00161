package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/api/validation"
	"cv-analyser/pkg/models"
	"cv-analyser/pkg/utils"
)

var requestValidator = validation.New()

// requestIDFrom returns the ID assigned by the request middleware, or a fresh one
func requestIDFrom(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	id := utils.GenerateRequestID()
	c.Set("request_id", id)
	return id
}

// respondDetail writes a CustomError as a {detail} body
func respondDetail(c echo.Context, err *utils.CustomError, requestID string) error {
	return c.JSON(err.Code, models.DetailResponse{
		Detail:    err.Error(),
		RequestID: requestID,
	})
}

// isBodyTooLarge reports whether err came from the body size limit
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
