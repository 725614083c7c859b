package forensics

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"regexp"
	"strings"
	"time"

	"github.com/clearcert/clearcert/pkg/logger"
	"go.uber.org/zap"
)

var (
	reFontDirective = regexp.MustCompile(`/F\d+\s+[\d.]+\s+Tf`)
	reRenderMode    = regexp.MustCompile(`\b\d\s+Tr\b`)
	reFontRef       = regexp.MustCompile(`/F(\d+)\b`)
)

// AnalyzerConfig tunes the full pipeline
type AnalyzerConfig struct {
	Extractor ExtractorConfig
	QR        QRVerifierConfig
}

// Analyzer runs the full forensic pipeline over a single document. Each
// sub-analyzer fails closed to neutral evidence, so a degraded run still
// produces a complete, well-formed result.
type Analyzer struct {
	meta      *MetadataAnalyzer
	extractor *Extractor
	matcher   *NameMatcher
	pixels    *ImageForensicsAnalyzer
	qr        *QRVerifier
	scoring   *ScoringEngine
	pdf       PDFEngine
	cfg       AnalyzerConfig
}

// NewAnalyzer wires the pipeline. pdf, ocr, and qrDecoder are the external
// engine collaborators; nil engines degrade the affected stages to neutral
// results.
func NewAnalyzer(pdf PDFEngine, ocr OCREngine, qrDecoder QRDecoder, patterns *NamePatterns, cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{
		meta:      NewMetadataAnalyzer(),
		extractor: NewExtractor(pdf, ocr, cfg.Extractor),
		matcher:   NewNameMatcher(patterns),
		pixels:    NewImageForensicsAnalyzer(),
		qr:        NewQRVerifier(qrDecoder, nil, cfg.QR),
		scoring:   NewScoringEngine(),
		pdf:       pdf,
		cfg:       cfg,
	}
}

// Analyze runs every forensic stage and scores the combined evidence. It
// never returns an error: unsupported or malformed input degrades to empty
// indicators plus a warning.
func (a *Analyzer) Analyze(ctx context.Context, doc RawDocument, expectedName string) *FraudAnalysisResult {
	start := time.Now()
	kind := Classify(doc.MediaType, doc.Data)

	indicators := FraudIndicators{Kind: kind}
	var warnings []Warning

	if kind == KindUnsupported {
		warnings = append(warnings, Warning{
			Severity: SeverityMedium,
			Message:  "unsupported or unrecognized document format; forensic analysis skipped",
		})
		breakdown := a.scoring.Score(&indicators)
		return &FraudAnalysisResult{
			Indicators:        indicators,
			FraudScore:        breakdown.Total,
			RiskLevel:         breakdown.RiskLevel,
			Warnings:          warnings,
			AnalysisCompleted: true,
		}
	}

	// Structural metadata
	switch kind {
	case KindPDF:
		meta, anomalies := a.meta.AnalyzePDF(doc.Data)
		indicators.Producer = meta.Producer
		indicators.Author = meta.Author
		indicators.AuthorPresent = strings.Contains(string(doc.Data), "/Author")
		indicators.CreationDate = meta.CreationDate
		indicators.ModificationDate = meta.ModificationDate
		indicators.HasDigitalSignature = meta.HasDigitalSignature
		indicators.MultipleModifications = meta.MultipleModifications
		indicators.MetadataStripped = meta.MetadataStripped
		indicators.HasLayers = meta.HasLayers
		indicators.IsScannedDocument = meta.IsScannedDocument
		indicators.Anomalies = anomalies
		indicators.SoftwareFingerprints = fingerprintsIn(meta.Creator, meta.Producer)
	case KindJPEG, KindPNG:
		meta := a.meta.AnalyzeImage(kind, doc.Data)
		indicators.MetadataStripped = meta.MetadataStripped
		indicators.CreationDate = meta.CaptureDate
		if meta.Software != "" {
			indicators.SoftwareFingerprints = []string{meta.Software}
		}
	}

	// Text extraction and name verification
	extraction := a.extractor.Extract(ctx, kind, doc.Data)
	nameMatch := a.matcher.Match(extraction.Text, expectedName)

	text := &TextAnalysis{
		Extraction: extraction,
		NameMatch:  &nameMatch,
	}
	if kind == KindPDF {
		content := string(doc.Data)
		text.FontDirectiveCount = len(reFontDirective.FindAllString(content, -1)) +
			len(reRenderMode.FindAllString(content, -1))
		text.FontInconsistency = distinctFontRefs(content) > 5
	}
	indicators.Text = text

	// Pixel forensics and QR run over a bitmap: the raw image, or the first
	// rendered PDF page.
	bitmap := a.documentBitmap(ctx, kind, doc.Data)
	if bitmap != nil {
		indicators.ImageEdit = a.pixels.Analyze(bitmap, extraction.Words, kind == KindPDF)
		indicators.QR = a.qr.Verify(ctx, bitmap)
	} else {
		indicators.QR = &QRVerification{Status: QRNotFound}
	}

	warnings = append(warnings, buildWarnings(&indicators, &nameMatch)...)

	breakdown := a.scoring.Score(&indicators)

	logger.WithContext(ctx).Debug("Document analysis completed",
		zap.String("kind", string(kind)),
		zap.Int("fraud_score", breakdown.Total),
		zap.String("risk_level", string(breakdown.RiskLevel)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &FraudAnalysisResult{
		Indicators:        indicators,
		FraudScore:        breakdown.Total,
		RiskLevel:         breakdown.RiskLevel,
		Warnings:          warnings,
		AnalysisCompleted: true,
	}
}

// documentBitmap returns the bitmap to run pixel analysis over: the decoded
// raster upload, or the first rendered page of a PDF. Nil means no bitmap
// could be produced; downstream stages degrade.
func (a *Analyzer) documentBitmap(ctx context.Context, kind DocumentKind, data []byte) image.Image {
	switch kind {
	case KindJPEG, KindPNG:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil
		}
		return img
	case KindPDF:
		if a.pdf == nil {
			return nil
		}
		scale := a.cfg.Extractor.RenderScale
		if scale <= 0 {
			scale = 2.0
		}
		img, err := a.pdf.RenderPage(ctx, data, 0, scale)
		if err != nil {
			return nil
		}
		return img
	}
	return nil
}

// fingerprintsIn collects editor fingerprints present in any of the given
// metadata strings.
func fingerprintsIn(values ...string) []string {
	var found []string
	seen := make(map[string]struct{})
	for _, v := range values {
		lower := strings.ToLower(v)
		for _, fp := range editorFingerprints {
			if _, dup := seen[fp]; dup {
				continue
			}
			if strings.Contains(lower, fp) {
				seen[fp] = struct{}{}
				found = append(found, fp)
			}
		}
	}
	return found
}

func distinctFontRefs(content string) int {
	seen := make(map[string]struct{})
	for _, m := range reFontRef.FindAllStringSubmatch(content, -1) {
		seen[m[1]] = struct{}{}
	}
	return len(seen)
}

// buildWarnings produces the ordered, severity-tagged message list
func buildWarnings(ind *FraudIndicators, nameMatch *NameMatchResult) []Warning {
	var warnings []Warning

	for _, fp := range ind.SoftwareFingerprints {
		warnings = append(warnings, Warning{
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("document was processed with image editing software: %s", fp),
		})
	}
	if ind.MultipleModifications {
		warnings = append(warnings, Warning{
			Severity: SeverityMedium,
			Message:  "document shows multiple incremental modifications",
		})
	}
	if ind.MetadataStripped {
		warnings = append(warnings, Warning{
			Severity: SeverityMedium,
			Message:  "document metadata has been stripped",
		})
	}
	if ind.HasLayers {
		warnings = append(warnings, Warning{
			Severity: SeverityLow,
			Message:  "document contains optional content layers",
		})
	}
	if ind.QR != nil {
		switch ind.QR.Status {
		case QRInvalid:
			warnings = append(warnings, Warning{
				Severity: SeverityHigh,
				Message:  "QR code payload failed validation",
			})
		case QRSuspicious:
			warnings = append(warnings, Warning{
				Severity: SeverityMedium,
				Message:  "QR code payload could not be verified",
			})
		}
	}
	if ind.ImageEdit != nil && ind.ImageEdit.LikelyEdited {
		warnings = append(warnings, Warning{
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("pixel analysis indicates likely editing (confidence %.0f%%)", ind.ImageEdit.EditConfidence),
		})
	}
	if nameMatch != nil && !nameMatch.Matched {
		warnings = append(warnings, Warning{
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("expected name %q was not found on the document", nameMatch.ExpectedName),
		})
	}
	for _, a := range ind.Anomalies {
		warnings = append(warnings, Warning{
			Severity: a.Severity,
			Message:  a.Description,
		})
	}

	return warnings
}
