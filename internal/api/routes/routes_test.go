package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-analyser/internal/auth"
	"cv-analyser/internal/config"
	"cv-analyser/internal/extractor"
	"cv-analyser/internal/extractor/pdftest"
	"cv-analyser/internal/llm"
	"cv-analyser/internal/logging"
	"cv-analyser/internal/logging/adapters"
	"cv-analyser/internal/matching"
	"cv-analyser/pkg/models"
)

// scannedRenderer pretends every document has one rasterised page
type scannedRenderer struct{ calls atomic.Int32 }

func (r *scannedRenderer) Render(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	r.calls.Add(1)
	p := filepath.Join(outDir, "page-1.png")
	return []string{p}, os.WriteFile(p, []byte("png"), 0600)
}

type cannedRecognizer struct{ text string }

func (r cannedRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	return r.text, nil
}

type testServer struct {
	echo     *echo.Echo
	auth     *auth.Service
	renderer *scannedRenderer
	openai   *httptest.Server
	hits     atomic.Int32
	lastBody atomic.Value
	logs     *adapters.MemoryAdapter
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	ts := &testServer{renderer: &scannedRenderer{}}

	ts.openai = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		ts.lastBody.Store(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Strong candidate"}}]}`))
	}))
	t.Cleanup(ts.openai.Close)

	cfg := config.Default()
	cfg.Auth.Users = map[string]string{"recruiter": "s3cret"}
	cfg.Providers.OpenAI.BaseURL = ts.openai.URL
	if mutate != nil {
		mutate(cfg)
	}

	ts.logs = adapters.NewMemoryAdapter("mem")
	logger := logging.NewMultiLogger()
	require.NoError(t, logger.AddAdapter(ts.logs))

	authService, err := auth.NewService(cfg)
	require.NoError(t, err)
	ts.auth = authService

	gateway := llm.NewGatewayFromConfig(cfg, logger)

	ts.echo = echo.New()
	SetupRoutes(ts.echo, Dependencies{
		Config:    cfg,
		Extractor: extractor.NewWithBackends(ts.renderer, cannedRecognizer{text: "Jean Dupont, 5 years experience"}, logger),
		Gateway:   gateway,
		Matcher:   matching.NewMatcher(gateway, logger),
		Auth:      authService,
		Logger:    logger,
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func analyzeRequest(t *testing.T, path string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAnalyzeScannedCVEndToEnd(t *testing.T) {
	ts := newTestServer(t, nil)
	token, _, err := ts.auth.Issue("recruiter")
	require.NoError(t, err)

	for _, path := range []string{"/analyze-cv", "/analyze-cv/"} {
		t.Run(path, func(t *testing.T) {
			req := analyzeRequest(t, path, map[string]string{
				"ai_provider":    "openai",
				"prompt":         "Evaluate this candidate",
				"openai_api_key": "sk-test-e2e",
			}, "jean_dupont.pdf", pdftest.Build(""))
			req.Header.Set("api-key", token)

			rec := ts.do(req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp models.AnalyzeCVResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, models.AnalyzeCVResponse{
				Engine:   "openai",
				Filename: "jean_dupont.pdf",
				Analysis: "Strong candidate",
			}, resp)
			assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

			body, _ := ts.lastBody.Load().([]byte)
			assert.Contains(t, string(body), "Jean Dupont, 5 years experience")
			assert.Contains(t, string(body), "Evaluate this candidate")
		})
	}

	assert.Equal(t, int32(2), ts.renderer.calls.Load())

	var completed []map[string]interface{}
	for _, e := range ts.logs.Entries() {
		if e.Message == "analysis completed" {
			completed = append(completed, e.Fields)
		}
	}
	require.Len(t, completed, 2)
	for _, fields := range completed {
		assert.Equal(t, true, fields["used_fallback"])
	}
	for _, e := range ts.logs.Entries() {
		for _, v := range e.Fields {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "sk-test-e2e")
			}
		}
	}
}

func TestAnalyzeRequiresToken(t *testing.T) {
	ts := newTestServer(t, nil)

	req := analyzeRequest(t, "/analyze-cv", map[string]string{"prompt": "p", "openai_api_key": "sk"}, "cv.pdf", pdftest.Build("text"))
	rec := ts.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "API key missing")
	assert.Zero(t, ts.hits.Load())
}

func TestAnalyzeRejectsOversizedUpload(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Server.MaxUploadBytes = 1024 })
	token, _, err := ts.auth.Issue("recruiter")
	require.NoError(t, err)

	req := analyzeRequest(t, "/analyze-cv", map[string]string{"prompt": "p", "openai_api_key": "sk"}, "cv.pdf", bytes.Repeat([]byte("A"), 4096))
	req.Header.Set("api-key", token)

	rec := ts.do(req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, ts.hits.Load())
}

func TestContextuelMissingOffresNeverCallsProvider(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{"ia_type":"openai","ia_key":"sk-test","modele":"gpt-4","prompt":"Score","candidat":{"nom":"Jean Dupont"}}`
	req := httptest.NewRequest(http.MethodPost, "/contextuel", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := ts.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp models.MatchingErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.NotEmpty(t, errResp.Error)
	assert.Zero(t, ts.hits.Load())
}

func TestContextuelRejectsNonJSONAnswer(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{"ia_type":"openai","ia_key":"sk-test","modele":"gpt-4","prompt":"Score",
		"candidat":{"nom":"Jean Dupont"},"offres":[{"id":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/contextuel", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := ts.do(req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid AI response")
	assert.Equal(t, int32(1), ts.hits.Load())
}

func TestGenerateTokenRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/generate-token", "/generate-token/"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("username=recruiter&password=s3cret"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

		rec := ts.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		_, err := ts.auth.Verify(resp.AccessToken)
		assert.NoError(t, err)
	}
}

func TestStatusRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	for path, status := range map[string]int{
		"/":            http.StatusOK,
		"/health":      http.StatusOK,
		"/health/live": http.StatusOK,
		"/missing":     http.StatusNotFound,
	} {
		rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, rec.Code, path)
	}
}
