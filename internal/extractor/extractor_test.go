package extractor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-analyser/internal/extractor/pdftest"
	"cv-analyser/internal/logging"
	"cv-analyser/internal/logging/adapters"
)

// fakeRenderer writes one placeholder image per page and records its calls
type fakeRenderer struct {
	pages int
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeRenderer) Render(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, err
	}

	var out []string
	for i := 1; i <= f.pages; i++ {
		p := filepath.Join(outDir, "page-"+string(rune('0'+i))+".png")
		if err := os.WriteFile(p, []byte("png"), 0600); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// fakeRecognizer returns canned text keyed by image base name
type fakeRecognizer struct {
	texts map[string]string
	errs  map[string]error
	seen  []string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	name := filepath.Base(imagePath)
	f.seen = append(f.seen, name)
	if err := f.errs[name]; err != nil {
		return "", err
	}
	return f.texts[name], nil
}

func newTestExtractor(r Renderer, rec Recognizer) (*Extractor, *adapters.MemoryAdapter) {
	mem := adapters.NewMemoryAdapter("mem")
	logger := logging.NewMultiLogger()
	_ = logger.AddAdapter(mem)
	return NewWithBackends(r, rec, logger), mem
}

func TestExtractDirectTextSkipsOCR(t *testing.T) {
	renderer := &fakeRenderer{pages: 2}
	recognizer := &fakeRecognizer{}
	ex, mem := newTestExtractor(renderer, recognizer)

	res, err := ex.Extract(context.Background(), pdftest.Build("Jean Dupont", "Senior Go engineer"))
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Equal(t, MethodText, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Jean Dupont")
	assert.Contains(t, res.Text, "Senior Go engineer")
	assert.Less(t, strings.Index(res.Text, "Jean Dupont"), strings.Index(res.Text, "Senior Go engineer"))
	assert.Zero(t, renderer.calls)
	assert.Empty(t, recognizer.seen)
	assert.NotContains(t, mem.Messages(), "direct extraction empty, falling back to OCR")
}

func TestExtractPartialTextIsTrusted(t *testing.T) {
	renderer := &fakeRenderer{pages: 2}
	ex, _ := newTestExtractor(renderer, &fakeRecognizer{})

	res, err := ex.Extract(context.Background(), pdftest.Build("", "Only the second page has text"))
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Contains(t, res.Text, "Only the second page has text")
	assert.Zero(t, renderer.calls)
}

func TestExtractFallsBackToOCR(t *testing.T) {
	renderer := &fakeRenderer{pages: 2}
	recognizer := &fakeRecognizer{texts: map[string]string{
		"page-1.png": "Jean Dupont, 5 years experience\n",
		"page-2.png": "Compétences: Go, SQL",
	}}
	ex, mem := newTestExtractor(renderer, recognizer)

	res, err := ex.Extract(context.Background(), pdftest.Build("", ""))
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Equal(t, MethodOCR, res.Method)
	assert.Equal(t, "Jean Dupont, 5 years experience\nCompétences: Go, SQL", res.Text)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, []string{"page-1.png", "page-2.png"}, recognizer.seen)
	assert.Contains(t, mem.Messages(), "direct extraction empty, falling back to OCR")
}

func TestExtractOCRSkipsFailedPages(t *testing.T) {
	renderer := &fakeRenderer{pages: 2}
	recognizer := &fakeRecognizer{
		texts: map[string]string{"page-2.png": "second"},
		errs:  map[string]error{"page-1.png": errors.New("tesseract crashed")},
	}
	ex, _ := newTestExtractor(renderer, recognizer)

	res, err := ex.Extract(context.Background(), pdftest.Build("", ""))
	require.NoError(t, err)
	assert.True(t, res.UsedFallback)
	assert.Equal(t, "second", res.Text)
}

func TestExtractOCRAllPagesFail(t *testing.T) {
	renderer := &fakeRenderer{pages: 1}
	recognizer := &fakeRecognizer{errs: map[string]error{"page-1.png": errors.New("no tesseract")}}
	ex, _ := newTestExtractor(renderer, recognizer)

	_, err := ex.Extract(context.Background(), pdftest.Build(""))

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, StageOCR, extErr.Stage)
}

func TestExtractOCRBlankScanIsNotAnError(t *testing.T) {
	renderer := &fakeRenderer{pages: 1}
	ex, _ := newTestExtractor(renderer, &fakeRecognizer{texts: map[string]string{"page-1.png": "  \n "}})

	res, err := ex.Extract(context.Background(), pdftest.Build(""))
	require.NoError(t, err)
	assert.True(t, res.UsedFallback)
	assert.Empty(t, res.Text)
}

func TestExtractRenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("pdftoppm missing")}
	ex, _ := newTestExtractor(renderer, &fakeRecognizer{})

	_, err := ex.Extract(context.Background(), pdftest.Build(""))

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, StageOCR, extErr.Stage)
	assert.Contains(t, err.Error(), "pdftoppm missing")
}

func TestExtractCorruptInputNeverRunsOCR(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     nil,
		"not a pdf": []byte("this is a plain text résumé"),
		"truncated": pdftest.Build("Jean Dupont")[:40],
		// xref still points at the first page, which now carries another object number
		"broken page tree": bytes.Replace(pdftest.Build("Jean Dupont"), []byte("\n4 0 obj"), []byte("\n9 0 obj"), 1),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			renderer := &fakeRenderer{pages: 1}
			recognizer := &fakeRecognizer{}
			ex, _ := newTestExtractor(renderer, recognizer)

			res, err := ex.Extract(context.Background(), data)
			assert.Nil(t, res)

			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, StageOpen, extErr.Stage)
			assert.Zero(t, renderer.calls)
			assert.Empty(t, recognizer.seen)
		})
	}
}

func TestExtractCancelledContextDuringOCR(t *testing.T) {
	renderer := &fakeRenderer{pages: 3}
	ex, _ := newTestExtractor(renderer, &fakeRecognizer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ex.Extract(ctx, pdftest.Build(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
