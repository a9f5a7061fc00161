package llm

import (
	"errors"
	"fmt"
	"strings"

	"cv-analyser/pkg/models"
)

// ErrUnsupportedProvider is returned before any network activity when the
// requested provider is not registered.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ProviderError reports a failed upstream call
type ProviderError struct {
	Provider models.ProviderName
	Cause    error

	detail string
}

func newProviderError(provider models.ProviderName, cause error, credential string) *ProviderError {
	msg := cause.Error()
	if credential != "" {
		msg = strings.ReplaceAll(msg, credential, redacted)
	}
	return &ProviderError{
		Provider: provider,
		Cause:    cause,
		detail:   Sanitize(msg),
	}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Detail())
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Detail is the human-readable cause with credentials scrubbed. It is safe to
// return to clients.
func (e *ProviderError) Detail() string {
	if e.detail != "" {
		return e.detail
	}
	if e.Cause == nil {
		return "unknown error"
	}
	return Sanitize(e.Cause.Error())
}

// ResponseFormatError means the provider answered but the text does not
// match the expected structure.
type ResponseFormatError struct {
	Reason string
	Raw    string
}

func (e *ResponseFormatError) Error() string {
	return "invalid provider response: " + e.Reason
}
