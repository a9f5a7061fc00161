package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents an error that maps directly onto an HTTP response
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewUnauthorizedError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnauthorized,
		Message: "Unauthorized",
		Detail:  detail,
	}
}

func NewForbiddenError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusForbidden,
		Message: "Forbidden",
		Detail:  detail,
	}
}

func NewPayloadTooLargeError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusRequestEntityTooLarge,
		Message: "Request body too large",
		Detail:  detail,
	}
}

// Analysis specific errors
func NewExtractionError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: "Text extraction failed",
		Detail:  detail,
	}
}

func NewLLMError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: "AI provider error",
		Detail:  detail,
	}
}
