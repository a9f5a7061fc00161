package llm

import (
	"context"

	"cv-analyser/pkg/models"
)

// Provider is one upstream language-model service. Implementations translate
// the normalized request into their own wire format and return the generated
// text. A Provider makes exactly one outbound call per Complete and never
// keeps the credential after it returns.
type Provider interface {
	// Name returns the registry key of the provider
	Name() models.ProviderName

	// DefaultModel is used when the request does not name a model
	DefaultModel() string

	// Complete sends the request upstream and returns the raw generated text
	Complete(ctx context.Context, req models.ProviderRequest) (string, error)
}
