package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cv-analyser/internal/logging"
	"cv-analyser/pkg/utils"
)

// maxResponseBytes caps how much of an upstream body is read
const maxResponseBytes = 8 << 20

// sendJSON posts body as JSON to url and returns the raw response body.
// Non-2xx statuses are errors carrying a truncated copy of the body.
func sendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger logging.Logger) ([]byte, int, error) {
	logger = logging.OrGlobal(logger)
	if client == nil {
		client = &http.Client{}
	}

	reqID := utils.GenerateRequestID()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("upstream request", map[string]interface{}{
		"upstream_id":    reqID,
		"url":            url,
		"content_length": len(bs),
	})

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("upstream response body close failed", map[string]interface{}{"upstream_id": reqID, "error": err.Error()})
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	logger.Debug("upstream response", map[string]interface{}{
		"upstream_id": reqID,
		"status":      resp.StatusCode,
		"bytes":       len(raw),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status %d: %s", resp.StatusCode, snippet(raw, 256))
	}
	return raw, resp.StatusCode, nil
}

func snippet(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
