package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cv-analyser/internal/config"
	"cv-analyser/internal/logging"
	"cv-analyser/pkg/utils"
)

// Extraction methods reported in ExtractionResult.Method
const (
	MethodText = "pdf-text"
	MethodOCR  = "pdf-ocr"
)

// ExtractionResult is the plain text of one uploaded document
type ExtractionResult struct {
	Text         string        `json:"text"`
	UsedFallback bool          `json:"used_fallback"`
	Pages        int           `json:"pages"`
	Method       string        `json:"method"`
	Duration     time.Duration `json:"duration"`
}

// Extractor turns PDF bytes into text, falling back to OCR when the
// document carries no text layer.
type Extractor struct {
	renderer   Renderer
	recognizer Recognizer
	logger     logging.Logger
}

// New builds an Extractor backed by pdftoppm and tesseract
func New(cfg *config.Config, logger logging.Logger) *Extractor {
	logger = logging.OrGlobal(logger)
	runner := ExecRunner{Logger: logger}

	return NewWithBackends(
		PdftoppmRenderer{
			Runner:   runner,
			Binary:   cfg.Extractor.Pdftoppm,
			DPI:      cfg.Extractor.DPI,
			MaxPages: cfg.Extractor.MaxPages,
		},
		TesseractRecognizer{
			Runner:      runner,
			Binary:      cfg.Extractor.Tesseract,
			Languages:   cfg.Extractor.Languages,
			TessdataDir: cfg.Extractor.TessdataDir,
		},
		logger,
	)
}

// NewWithBackends builds an Extractor with explicit OCR backends
func NewWithBackends(renderer Renderer, recognizer Recognizer, logger logging.Logger) *Extractor {
	return &Extractor{
		renderer:   renderer,
		recognizer: recognizer,
		logger:     logging.OrGlobal(logger),
	}
}

// Extract returns the text of the document. A document that cannot be
// opened fails with *ExtractionError and OCR is never attempted for it.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*ExtractionResult, error) {
	start := time.Now()
	e.logger.Info("extraction started", map[string]interface{}{"bytes": len(data)})

	pages, err := openPDF(data)
	if err != nil {
		e.logger.Warn("document could not be opened", map[string]interface{}{"error": err.Error()})
		return nil, &ExtractionError{Stage: StageOpen, Err: err}
	}

	result := &ExtractionResult{Pages: len(pages), Method: MethodText}
	text := Normalize(directText(pages, e.logger))

	if text == "" {
		e.logger.Info("direct extraction empty, falling back to OCR", map[string]interface{}{
			"pages": result.Pages,
		})

		result.UsedFallback = true
		result.Method = MethodOCR
		if result.Pages > 0 {
			text, err = e.ocr(ctx, data)
			if err != nil {
				e.logger.Error("ocr fallback failed", map[string]interface{}{"error": err.Error()})
				return nil, &ExtractionError{Stage: StageOCR, Err: err}
			}
		}
	}

	result.Text = text
	result.Duration = time.Since(start)

	e.logger.Info("extraction completed", map[string]interface{}{
		"pages":         result.Pages,
		"chars":         len(result.Text),
		"used_fallback": result.UsedFallback,
		"duration":      utils.FormatDuration(result.Duration),
	})

	return result, nil
}

// ocr renders every page to an image and recognises each one independently.
// The working directory is removed before returning.
func (e *Extractor) ocr(ctx context.Context, data []byte) (string, error) {
	workDir, err := os.MkdirTemp("", "cv-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			e.logger.Warn("failed to remove ocr work dir", map[string]interface{}{"dir": workDir, "error": err.Error()})
		}
	}()

	pdfPath := filepath.Join(workDir, "document.pdf")
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	images, err := e.renderer.Render(ctx, pdfPath, workDir)
	if err != nil {
		return "", fmt.Errorf("render pages: %w", err)
	}
	if len(images) == 0 {
		return "", nil
	}

	var parts []string
	failed := 0
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		txt, err := e.recognizer.Recognize(ctx, img)
		if err != nil {
			failed++
			e.logger.Warn("ocr failed for page", map[string]interface{}{"page": i + 1, "error": err.Error()})
			continue
		}
		if txt = Normalize(txt); txt != "" {
			parts = append(parts, txt)
		}
	}

	if failed == len(images) {
		return "", fmt.Errorf("ocr failed on all %d pages", failed)
	}
	return strings.Join(parts, "\n"), nil
}
