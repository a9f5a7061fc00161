package matching

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"cv-analyser/internal/llm"
	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
)

// temperature used for every matching call
const temperature = 0.2

//go:embed schema.json
var schemaDocument []byte

// Schema is the declared shape of a matching result
var Schema = llm.MustCompileSchema("match_result.json", schemaDocument)

// MatchResult is the validated provider answer
type MatchResult struct {
	Matches []OfferMatch `json:"matches"`
	Summary string       `json:"summary,omitempty"`
}

// OfferMatch scores the candidate against one offer
type OfferMatch struct {
	OfferID       json.RawMessage `json:"offer_id"`
	Title         string          `json:"title,omitempty"`
	Score         float64         `json:"score"`
	Justification string          `json:"justification,omitempty"`
	Strengths     []string        `json:"strengths,omitempty"`
	Gaps          []string        `json:"gaps,omitempty"`
}

// Caller performs a single provider call
type Caller interface {
	CallProvider(ctx context.Context, req models.ProviderRequest) (*models.ProviderResponse, error)
}

// Matcher scores a candidate against job offers with a language model
type Matcher struct {
	caller Caller
	logger logging.Logger
}

func NewMatcher(caller Caller, logger logging.Logger) *Matcher {
	return &Matcher{caller: caller, logger: logging.OrGlobal(logger)}
}

// Match builds the prompt, makes one provider call and returns the provider
// document once it has been validated against Schema. The returned JSON is
// the provider's own document, so fields beyond MatchResult are preserved.
func (m *Matcher) Match(ctx context.Context, req *models.MatchingRequest) (json.RawMessage, error) {
	start := time.Now()

	prompt, err := BuildPrompt(req.Prompt, req.Candidat, req.Offres)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	temp := temperature
	resp, err := m.caller.CallProvider(ctx, models.ProviderRequest{
		Provider:    models.ProviderName(req.IAType),
		Credential:  req.IAKey,
		Model:       req.Modele,
		UserContent: prompt,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	doc, err := llm.ParseStructured(resp.RawText, Schema)
	if err != nil {
		m.logger.Warn("matching response rejected", map[string]interface{}{
			"provider": resp.Engine,
			"error":    err.Error(),
		})
		return nil, err
	}

	fields := map[string]interface{}{
		"provider":    resp.Engine,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if result, err := Decode(doc); err == nil {
		fields["matches"] = len(result.Matches)
	}
	m.logger.Info("matching completed", fields)
	return doc, nil
}

// Decode unmarshals a validated document into a MatchResult
func Decode(doc json.RawMessage) (*MatchResult, error) {
	var out MatchResult
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decode match result: %w", err)
	}
	return &out, nil
}
