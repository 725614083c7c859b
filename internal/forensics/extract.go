package forensics

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // registered for image decoding
	_ "image/png"  // registered for image decoding
	"strings"
)

const (
	// nativeTextMinLength is the selectable-text length above which the PDF
	// text layer is trusted over OCR.
	nativeTextMinLength = 50

	// nativeTextConfidence is the fixed confidence for native extraction.
	nativeTextConfidence = 95.0
)

// ExtractorConfig tunes the text extraction pipeline
type ExtractorConfig struct {
	MaxOCRPages int     // scanned-PDF page cap, bounds worst-case latency
	RenderScale float64 // rasterization scale for OCR input
}

// Extractor recovers document text, preferring the native PDF text layer and
// falling back to OCR. Every stage failure yields an empty zero-confidence
// result instead of an error; extraction failures are never fraud evidence.
type Extractor struct {
	pdf PDFEngine
	ocr OCREngine
	cfg ExtractorConfig
}

// NewExtractor creates a text extraction pipeline
func NewExtractor(pdf PDFEngine, ocr OCREngine, cfg ExtractorConfig) *Extractor {
	if cfg.MaxOCRPages <= 0 {
		cfg.MaxOCRPages = 5
	}
	if cfg.RenderScale <= 0 {
		cfg.RenderScale = 2.0
	}
	return &Extractor{pdf: pdf, ocr: ocr, cfg: cfg}
}

// Extract recovers text from the document according to its kind
func (e *Extractor) Extract(ctx context.Context, kind DocumentKind, data []byte) ExtractionResult {
	switch kind {
	case KindPDF:
		return e.extractPDF(ctx, data)
	case KindJPEG, KindPNG:
		return e.extractImage(ctx, data)
	default:
		return ExtractionResult{Method: MethodNative}
	}
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) ExtractionResult {
	if e.pdf != nil {
		pages, err := e.pdf.ExtractText(ctx, data)
		if err == nil {
			var sb strings.Builder
			for _, p := range pages {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(p.Text)
			}
			text := sb.String()
			if len(strings.TrimSpace(text)) > nativeTextMinLength {
				return ExtractionResult{
					Text:       text,
					Confidence: nativeTextConfidence,
					Method:     MethodNative,
				}
			}
		}
	}

	// No usable text layer: treat as a scanned document and OCR rendered pages
	return e.ocrPDFPages(ctx, data)
}

func (e *Extractor) ocrPDFPages(ctx context.Context, data []byte) ExtractionResult {
	if e.pdf == nil || e.ocr == nil {
		return ExtractionResult{Method: MethodOCR}
	}

	pageCount, err := e.pdf.PageCount(ctx, data)
	if err != nil || pageCount == 0 {
		return ExtractionResult{Method: MethodOCR}
	}
	if pageCount > e.cfg.MaxOCRPages {
		pageCount = e.cfg.MaxOCRPages
	}

	var (
		sb            strings.Builder
		words         []WordConfidence
		confidenceSum float64
		pagesOCRed    int
	)

	for page := 0; page < pageCount; page++ {
		if ctx.Err() != nil {
			break
		}

		img, err := e.pdf.RenderPage(ctx, data, page, e.cfg.RenderScale)
		if err != nil || img == nil {
			continue
		}

		result, err := e.ocr.Recognize(ctx, img)
		if err != nil || result == nil {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(result.Text)
		words = append(words, result.Words...)
		confidenceSum += result.Confidence
		pagesOCRed++
	}

	if pagesOCRed == 0 {
		return ExtractionResult{Method: MethodOCR}
	}

	return ExtractionResult{
		Text:       sb.String(),
		Confidence: confidenceSum / float64(pagesOCRed),
		Words:      words,
		Method:     MethodOCR,
	}
}

func (e *Extractor) extractImage(ctx context.Context, data []byte) ExtractionResult {
	if e.ocr == nil {
		return ExtractionResult{Method: MethodOCR}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ExtractionResult{Method: MethodOCR}
	}

	result, err := e.ocr.Recognize(ctx, img)
	if err != nil || result == nil {
		return ExtractionResult{Method: MethodOCR}
	}

	return ExtractionResult{
		Text:       result.Text,
		Confidence: result.Confidence,
		Words:      result.Words,
		Method:     MethodOCR,
	}
}
