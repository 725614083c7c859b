package forensics

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// legitimateProducers are common document generators that never attract a
// producer penalty, verbatim allow-list matching by substring.
var legitimateProducers = []string{
	"microsoft word",
	"microsoft office",
	"libreoffice",
	"openoffice",
	"latex",
	"pdflatex",
	"xelatex",
	"google docs",
	"google",
	"chromium",
	"chrome",
	"skia",
	"wkhtmltopdf",
	"reportlab",
	"itext",
	"apache fop",
	"quartz",
	"macos",
	"prince",
}

// suspiciousProducers are online editing services frequently used to doctor
// existing PDFs.
var suspiciousProducers = []string{
	"ilovepdf",
	"smallpdf",
	"sejda",
	"pdfescape",
	"sodapdf",
	"pdffiller",
	"online",
}

var reCertPhrases = regexp.MustCompile(`(?i)\b(?:this is to certify|certificate of|has (?:successfully )?completed|awarded to|conferred upon)\b`)

// ScoreBreakdown is the scoring output: both components, the clamped total,
// and the derived risk band.
type ScoreBreakdown struct {
	Base        int       `json:"base_score"`
	TextImageQR int       `json:"text_image_qr_score"`
	Total       int       `json:"fraud_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// ScoringEngine combines every forensic signal into a bounded fraud score.
// Scoring is pure: the same indicators always produce the same score.
type ScoringEngine struct {
	now func() time.Time
}

// NewScoringEngine creates a scoring engine using the wall clock
func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{now: time.Now}
}

// NewScoringEngineAt creates a scoring engine with a fixed clock
func NewScoringEngineAt(now func() time.Time) *ScoringEngine {
	return &ScoringEngine{now: now}
}

// Score computes both components and the clamped combined fraud score
func (e *ScoringEngine) Score(ind *FraudIndicators) ScoreBreakdown {
	base := e.baseScore(ind)
	aux := e.textImageQRScore(ind)
	total := clampScore(base+aux, 0, 100)
	return ScoreBreakdown{
		Base:        base,
		TextImageQR: aux,
		Total:       total,
		RiskLevel:   RiskLevelForScore(total),
	}
}

// baseScore applies the additive metadata rules, clamped to [0,100]
func (e *ScoringEngine) baseScore(ind *FraudIndicators) int {
	if ind == nil {
		return 0
	}

	score := 0
	now := e.now()

	if len(ind.SoftwareFingerprints) > 0 {
		score += 25
	}

	score += producerPenalty(ind.Producer)

	if ind.CreationDate != nil && ind.ModificationDate != nil {
		if ind.ModificationDate.Sub(*ind.CreationDate) > 24*time.Hour {
			score += 15
		}
	}

	if ind.MultipleModifications {
		score += 20
	}
	if ind.MetadataStripped {
		score += 15
	}
	if ind.HasLayers {
		score += 10
	}

	if ind.CreationDate != nil && ind.CreationDate.After(now.Add(time.Hour)) {
		score += 30
	}
	if ind.ModificationDate != nil && ind.ModificationDate.After(now.Add(time.Hour)) {
		score += 25
	}

	score += recencyNudge(ind.CreationDate, now)

	if suspiciousAuthor(ind) {
		score += 10
	}

	score += indicatorCountBonus(e.rawIndicatorCount(ind))

	// A digital signature is strong evidence the file was not re-saved
	if ind.HasDigitalSignature {
		score -= 20
	}

	return clampScore(score, 0, 100)
}

// textImageQRScore applies the text, image, and QR rules, clamped to [0,50]
func (e *ScoringEngine) textImageQRScore(ind *FraudIndicators) int {
	if ind == nil {
		return 0
	}

	score := 0
	isPDF := ind.Kind == KindPDF

	if qr := ind.QR; qr != nil {
		switch qr.Status {
		case QRVerified:
			score -= 10
		case QRInvalid:
			score += 25
			if qr.Found > 0 && qr.Valid == 0 {
				score += 10
			}
		case QRSuspicious:
			score += 15
		}
	}

	score += anomalyPenalty(ind.Anomalies)

	if text := ind.Text; text != nil {
		score += anomalyPenalty(text.Anomalies)

		if text.FontInconsistency {
			score += 5
		}
		if text.Extraction.Method == MethodOCR && text.Extraction.Confidence > 0 && text.Extraction.Confidence < 50 {
			score += 3
		}
		if isPDF {
			score += pdfTextHeuristics(text)
		}
	}

	// Pixel-edit penalties apply to raster uploads only; PDF page renders
	// carry the raw signals but are excluded from scoring for now.
	if edit := ind.ImageEdit; edit != nil && !isPDF {
		score += int(edit.EditConfidence / 100 * 10)
		if edit.CompressionVariance > 0.5 {
			score += 5
		} else if edit.CompressionVariance > 0.25 {
			score += 3
		}
		if len(edit.OCRVarianceFlags) > 2 {
			score += 5
		} else if len(edit.OCRVarianceFlags) > 0 {
			score += 3
		}
	}

	return clampScore(score, 0, 50)
}

func producerPenalty(producer string) int {
	p := strings.ToLower(strings.TrimSpace(producer))
	if p == "" {
		return 0
	}
	for _, legit := range legitimateProducers {
		if strings.Contains(p, legit) {
			return 0
		}
	}
	for _, sus := range suspiciousProducers {
		if strings.Contains(p, sus) {
			return 8
		}
	}
	return 2
}

// recencyNudge adds a small bump for freshly created documents. Weak signal,
// capped at +3.
func recencyNudge(created *time.Time, now time.Time) int {
	if created == nil {
		return 0
	}
	age := now.Sub(*created)
	switch {
	case age < 0:
		return 0
	case age < 24*time.Hour:
		return 3
	case age < 7*24*time.Hour:
		return 2
	case age < 30*24*time.Hour:
		return 1
	}
	return 0
}

func suspiciousAuthor(ind *FraudIndicators) bool {
	if !ind.AuthorPresent {
		return false
	}
	author := strings.ToLower(strings.TrimSpace(ind.Author))
	if author == "" {
		return true
	}
	for _, fp := range editorFingerprints {
		if strings.Contains(author, fp) {
			return true
		}
	}
	return false
}

// rawIndicatorCount tallies how many independent signals fired
func (e *ScoringEngine) rawIndicatorCount(ind *FraudIndicators) int {
	n := len(ind.SoftwareFingerprints) + len(ind.Anomalies)
	for _, flag := range []bool{
		ind.MetadataStripped,
		ind.HasLayers,
		ind.MultipleModifications,
		ind.IsScannedDocument,
	} {
		if flag {
			n++
		}
	}
	if ind.ImageEdit != nil && ind.ImageEdit.LikelyEdited {
		n++
	}
	if ind.QR != nil && (ind.QR.Status == QRInvalid || ind.QR.Status == QRSuspicious) {
		n++
	}
	return n
}

// indicatorCountBonus maps the raw indicator tally onto a banded +1..+15
func indicatorCountBonus(n int) int {
	switch {
	case n >= 10:
		return 15
	case n >= 8:
		return 10
	case n >= 6:
		return 6
	case n >= 4:
		return 3
	case n >= 2:
		return 1
	}
	return 0
}

func anomalyPenalty(anomalies []Anomaly) int {
	score := 0
	for _, a := range anomalies {
		switch a.Severity {
		case SeverityHigh:
			score += 8
		case SeverityMedium:
			score += 4
		default:
			score += 2
		}
	}
	return score
}

// pdfTextHeuristics applies the small, individually capped PDF text checks
func pdfTextHeuristics(text *TextAnalysis) int {
	score := 0
	content := text.Extraction.Text
	trimmed := strings.TrimSpace(content)

	if trimmed == "" {
		return 0
	}

	// Non-printable character density
	nonPrintable := 0
	for _, r := range content {
		if !unicode.IsPrint(r) && r != '\n' && r != '\r' && r != '\t' {
			nonPrintable++
		}
	}
	if len(content) > 0 && float64(nonPrintable)/float64(len(content)) > 0.05 {
		score += 3
	}

	// Inconsistent line endings
	if strings.Contains(content, "\r\n") && strings.Contains(strings.ReplaceAll(content, "\r\n", ""), "\r") {
		score += 2
	}

	// Very short text for a certificate
	if len(trimmed) < 100 {
		score += 3
	}

	// Certificate phrasing recovered at low confidence
	if reCertPhrases.MatchString(content) && text.Extraction.Confidence > 0 && text.Extraction.Confidence < 60 {
		score += 3
	}

	// Abnormal average word length
	words := strings.Fields(trimmed)
	if len(words) > 5 {
		totalLen := 0
		for _, w := range words {
			totalLen += len(w)
		}
		avg := float64(totalLen) / float64(len(words))
		if avg < 2 || avg > 12 {
			score += 2
		}

		// Repeated-word ratio
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[strings.ToLower(w)] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.3 {
			score += 2
		}
	}

	// Font/rendering-mode directive density
	if text.FontDirectiveCount > 200 {
		score += 3
	}

	if score > 15 {
		score = 15
	}
	return score
}
