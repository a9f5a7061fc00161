package extractor

import "fmt"

// Extraction stages reported by ExtractionError
const (
	StageOpen = "open"
	StageOCR  = "ocr"
)

// ExtractionError reports a document that could not be turned into text
type ExtractionError struct {
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed at %s stage: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
