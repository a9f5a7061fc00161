package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
)

// Gateway dispatches normalized requests to registered providers
type Gateway struct {
	mu        sync.RWMutex
	providers map[models.ProviderName]Provider
	logger    logging.Logger
}

// NewGateway creates a gateway with the given providers registered
func NewGateway(logger logging.Logger, providers ...Provider) *Gateway {
	g := &Gateway{
		providers: make(map[models.ProviderName]Provider, len(providers)),
		logger:    logging.OrGlobal(logger),
	}
	for _, p := range providers {
		g.Register(p)
	}
	return g
}

// Register adds or replaces a provider under its own name
func (g *Gateway) Register(p Provider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers[p.Name()] = p
}

// Lookup returns the provider registered under name
func (g *Gateway) Lookup(name models.ProviderName) (Provider, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
	return p, nil
}

// Supports reports whether name is registered
func (g *Gateway) Supports(name models.ProviderName) bool {
	_, err := g.Lookup(name)
	return err == nil
}

// Providers returns the registered provider names in sorted order
func (g *Gateway) Providers() []models.ProviderName {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]models.ProviderName, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// CallProvider performs exactly one upstream call for req. Every failure is a
// *ProviderError; unknown providers wrap ErrUnsupportedProvider and are
// rejected before any network activity.
func (g *Gateway) CallProvider(ctx context.Context, req models.ProviderRequest) (*models.ProviderResponse, error) {
	p, err := g.Lookup(req.Provider)
	if err != nil {
		g.logger.Warn("provider dispatch rejected", map[string]interface{}{
			"provider": string(req.Provider),
		})
		return nil, &ProviderError{Provider: req.Provider, Cause: err}
	}

	if req.Model == "" {
		req.Model = p.DefaultModel()
	}

	fields := map[string]interface{}{
		"provider": string(req.Provider),
		"model":    req.Model,
	}
	g.logger.Info("provider call started", fields)

	start := time.Now()
	text, err := p.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		perr := newProviderError(req.Provider, err, req.Credential)
		g.logger.Error("provider call failed", map[string]interface{}{
			"provider":    string(req.Provider),
			"model":       req.Model,
			"duration_ms": elapsed.Milliseconds(),
			"error":       perr.Detail(),
		})
		return nil, perr
	}

	g.logger.Info("provider call completed", map[string]interface{}{
		"provider":    string(req.Provider),
		"model":       req.Model,
		"duration_ms": elapsed.Milliseconds(),
		"chars":       len(text),
	})

	return &models.ProviderResponse{
		Engine:  string(req.Provider),
		RawText: text,
	}, nil
}
