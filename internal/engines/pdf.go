package engines

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/ledongthuc/pdf"
)

// ErrRenderingUnavailable is returned when page rasterization is requested
// but no render backend is configured. Rasterization requires a native
// renderer; deployments plug one in behind the PDFEngine interface.
var ErrRenderingUnavailable = errors.New("pdf page rendering not available")

// PDFTextEngine extracts the native text layer using a pure-Go PDF parser.
type PDFTextEngine struct{}

// NewPDFTextEngine creates the default PDF text engine
func NewPDFTextEngine() *PDFTextEngine {
	return &PDFTextEngine{}
}

// ExtractText returns the selectable text per page
func (e *PDFTextEngine) ExtractText(ctx context.Context, data []byte) (pages []forensics.PageText, err error) {
	defer func() {
		// The parser panics on malformed cross-reference tables
		if r := recover(); r != nil {
			pages = nil
			err = errors.New("pdf parse failure")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if ctx.Err() != nil {
			return pages, ctx.Err()
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, forensics.PageText{Page: i - 1, Text: text})
	}

	return pages, nil
}

// RenderPage is unavailable in the pure-Go engine
func (e *PDFTextEngine) RenderPage(ctx context.Context, data []byte, page int, scale float64) (image.Image, error) {
	return nil, ErrRenderingUnavailable
}

// PageCount returns the number of pages
func (e *PDFTextEngine) PageCount(ctx context.Context, data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = errors.New("pdf parse failure")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
