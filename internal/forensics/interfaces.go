package forensics

import (
	"context"
	"image"
)

// OCRResult is the raw output of a text-recognition engine run
type OCRResult struct {
	Text       string
	Confidence float64
	Words      []WordConfidence
}

// OCREngine recognizes text in a rendered bitmap. Implementations wrap
// external engines (Tesseract, cloud OCR) and only return bytes-in
// structured-data-out; all interpretation happens in this package.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (*OCRResult, error)
}

// PageText is the selectable text layer of a single PDF page
type PageText struct {
	Page int
	Text string
}

// PDFEngine provides PDF text-layer access and page rasterization
type PDFEngine interface {
	// ExtractText returns the native text layer per page
	ExtractText(ctx context.Context, data []byte) ([]PageText, error)

	// RenderPage rasterizes a single zero-indexed page at the given scale
	RenderPage(ctx context.Context, data []byte, page int, scale float64) (image.Image, error)

	// PageCount returns the number of pages
	PageCount(ctx context.Context, data []byte) (int, error)
}

// QRDecoder decodes QR payloads from a bitmap. A nil-slice, nil-error return
// means no code was found.
type QRDecoder interface {
	Decode(ctx context.Context, img image.Image) ([]string, error)
}

// URLProber checks best-effort reachability of a QR-embedded URL. Failures
// are inconclusive, never fraud evidence.
type URLProber interface {
	Probe(ctx context.Context, url string) bool
}
