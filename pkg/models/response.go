package models

import "time"

// AnalyzeCVResponse is returned by POST /analyze-cv on success
type AnalyzeCVResponse struct {
	Engine   string `json:"engine"`
	Filename string `json:"filename"`
	Analysis string `json:"analysis"`
}

// TokenResponse is returned by POST /generate-token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// DetailResponse is the error body of the analysis and token endpoints
type DetailResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// MatchingErrorResponse is the error body of the matching endpoint
type MatchingErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}
