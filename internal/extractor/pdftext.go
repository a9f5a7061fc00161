package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"cv-analyser/internal/logging"
)

// openPDF parses the document container and resolves the page tree.
// Malformed input, including a broken page reference, fails here before any
// page content is read. The reader resolves objects lazily and panics on bad
// references, so the whole walk runs under recover.
func openPDF(data []byte) (pages []pdf.Page, err error) {
	defer func() {
		if p := recover(); p != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	n := r.NumPage()
	pages = make([]pdf.Page, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			return nil, fmt.Errorf("page %d missing from page tree", i)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// pageText returns the embedded text of one page. Pages whose content
// stream cannot be decoded yield "" and an error.
func pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("decode page content: %v", rec)
		}
	}()

	return p.GetPlainText(nil)
}

// directText reads the text layer of every page and joins the non-empty
// pages with newlines, in page order.
func directText(pages []pdf.Page, logger logging.Logger) string {
	var parts []string
	for i, p := range pages {
		text, err := pageText(p)
		if err != nil {
			logger.Debug("skipping undecodable page text", map[string]interface{}{
				"page":  i + 1,
				"error": err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}
