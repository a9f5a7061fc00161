package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Renderer rasterises every page of a PDF file into images inside outDir
// and returns the image paths in page order.
type Renderer interface {
	Render(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Recognizer runs optical character recognition over one image.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// PdftoppmRenderer renders pages with poppler's pdftoppm.
type PdftoppmRenderer struct {
	Runner   Runner
	Binary   string
	DPI      int
	MaxPages int // 0 = no limit
}

var rePageNumber = regexp.MustCompile(`-(\d+)\.png$`)

func (p PdftoppmRenderer) Render(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	args := []string{"-r", strconv.Itoa(p.DPI), "-png"}
	if p.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(p.MaxPages))
	}
	args = append(args, pdfPath, prefix)

	// pdftoppm -r 300 -png [-l N] <in.pdf> <dir/page>
	_, errb, err := p.Runner.Run(ctx, p.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	// page-1.png, page-2.png ... (zero padded for long documents)
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})
	if p.MaxPages > 0 && len(matches) > p.MaxPages {
		matches = matches[:p.MaxPages]
	}
	return matches, nil
}

func pageNumber(path string) int {
	m := rePageNumber.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// TesseractRecognizer recognises text with the tesseract CLI.
type TesseractRecognizer struct {
	Runner      Runner
	Binary      string
	Languages   []string
	TessdataDir string
}

func (t TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	// tesseract <image> stdout -l eng+fra
	args := []string{imagePath, "stdout", "-l", strings.Join(t.Languages, "+")}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}

	out, errb, err := t.Runner.Run(ctx, t.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return string(out), nil
}
