package providers

import (
	"context"
	"errors"
	"time"
)

var (
	errMissingCredential = errors.New("missing API credential")
	errEmptyResponse     = errors.New("empty response from provider")
)

// withTimeout bounds a single upstream call; zero means the caller's deadline only
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
