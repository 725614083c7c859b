package engines

import (
	"context"
	"image"

	"github.com/clearcert/clearcert/internal/forensics"
)

// NoopOCR is the placeholder OCR engine used when no recognition backend is
// configured. It recognizes nothing; the pipeline degrades to a
// zero-confidence extraction, which is never treated as fraud evidence.
type NoopOCR struct{}

// NewNoopOCR creates the placeholder engine
func NewNoopOCR() *NoopOCR {
	return &NoopOCR{}
}

// Recognize returns an empty result
func (e *NoopOCR) Recognize(ctx context.Context, img image.Image) (*forensics.OCRResult, error) {
	return &forensics.OCRResult{}, nil
}
