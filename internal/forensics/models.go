package forensics

import "time"

// DocumentKind classifies raw document bytes
type DocumentKind string

const (
	KindPDF         DocumentKind = "pdf"
	KindJPEG        DocumentKind = "jpeg"
	KindPNG         DocumentKind = "png"
	KindUnsupported DocumentKind = "unsupported"
)

// RawDocument is an uploaded document held in memory for the duration of
// one analysis. It is never persisted by this package.
type RawDocument struct {
	Data      []byte
	MediaType string
	Filename  string
}

// ExtractionMethod tags how document text was recovered
type ExtractionMethod string

const (
	MethodNative ExtractionMethod = "native"
	MethodOCR    ExtractionMethod = "ocr"
	MethodHybrid ExtractionMethod = "hybrid"
)

// WordConfidence is a single recognized word with its OCR confidence and
// bounding box.
type WordConfidence struct {
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// ExtractionResult holds recovered text and its provenance
type ExtractionResult struct {
	Text       string           `json:"text"`
	Confidence float64          `json:"confidence"`
	Words      []WordConfidence `json:"words,omitempty"`
	Method     ExtractionMethod `json:"extraction_method"`
}

// MatchType describes how an extracted name related to the expected identity
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchFuzzy   MatchType = "fuzzy"
	MatchNone    MatchType = "no_match"
)

// NameMatchResult is the outcome of matching extracted text against an
// expected identity.
type NameMatchResult struct {
	Matched       bool      `json:"matched"`
	Confidence    float64   `json:"confidence"`
	ExtractedName string    `json:"extracted_name"`
	ExpectedName  string    `json:"expected_name"`
	MatchType     MatchType `json:"match_type"`
	Discrepancies []string  `json:"discrepancies,omitempty"`
}

// Severity grades a forensic anomaly
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is a discrete severity-tagged forensic observation
type Anomaly struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Location    string   `json:"location,omitempty"`
}

// Region identifies an offending image area by tile coordinates
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ImageEditResult aggregates the pixel-level manipulation signals
type ImageEditResult struct {
	LikelyEdited        bool     `json:"likely_edited"`
	EditConfidence      float64  `json:"edit_confidence"`
	CompressionVariance float64  `json:"compression_variance"`
	ColorInconsistency  bool     `json:"color_inconsistency"`
	SuspiciousRegions   []Region `json:"suspicious_regions,omitempty"`
	EdgeAnomalies       bool     `json:"edge_anomalies"`
	EdgeAnomalyCount    int      `json:"edge_anomaly_count"`
	EdgeLocations       []Region `json:"edge_locations,omitempty"`
	OCRVarianceFlags    []string `json:"ocr_variance_flags,omitempty"`
}

// QRStatus classifies a decoded QR payload
type QRStatus string

const (
	QRVerified   QRStatus = "verified"
	QRInvalid    QRStatus = "invalid"
	QRSuspicious QRStatus = "suspicious"
	QRNotFound   QRStatus = "not_found"
)

// QRVerification is the decoded-QR validation sub-result
type QRVerification struct {
	Status   QRStatus `json:"status"`
	Payloads []string `json:"payloads,omitempty"`
	Found    int      `json:"found"`
	Valid    int      `json:"valid"`
	Detail   string   `json:"detail,omitempty"`
}

// TextAnalysis carries text-derived fraud signals
type TextAnalysis struct {
	Extraction        ExtractionResult `json:"extraction"`
	NameMatch         *NameMatchResult `json:"name_match,omitempty"`
	FontInconsistency bool             `json:"font_inconsistency"`
	// FontDirectiveCount counts /F and Tr tokens in the PDF content stream;
	// unusually dense font switching suggests pieced-together text.
	FontDirectiveCount int       `json:"font_directive_count,omitempty"`
	Anomalies          []Anomaly `json:"anomalies,omitempty"`
}

// PDFMetadata holds indicators recovered from PDF structure
type PDFMetadata struct {
	PDFVersion            string     `json:"pdf_version,omitempty"`
	Creator               string     `json:"creator,omitempty"`
	Producer              string     `json:"producer,omitempty"`
	Author                string     `json:"author,omitempty"`
	CreationDate          *time.Time `json:"creation_date,omitempty"`
	ModificationDate      *time.Time `json:"modification_date,omitempty"`
	HasDigitalSignature   bool       `json:"has_digital_signature"`
	MultipleModifications bool       `json:"multiple_modifications"`
	EOFMarkerCount        int        `json:"eof_marker_count"`
	MetadataStripped      bool       `json:"metadata_stripped"`
	IsScannedDocument     bool       `json:"is_scanned_document"`
	HasLayers             bool       `json:"has_layers"`
	PageCount             int        `json:"page_count"`
}

// ImageMetadata holds indicators recovered from raster metadata
type ImageMetadata struct {
	Format           DocumentKind `json:"format"`
	Software         string       `json:"software,omitempty"`
	CaptureDate      *time.Time   `json:"capture_date,omitempty"`
	MetadataStripped bool         `json:"metadata_stripped"`
}

// FraudIndicators collects every raw signal feeding the scoring engine
type FraudIndicators struct {
	Kind                  DocumentKind     `json:"kind"`
	SoftwareFingerprints  []string         `json:"software_fingerprints,omitempty"`
	CreationDate          *time.Time       `json:"creation_date,omitempty"`
	ModificationDate      *time.Time       `json:"modification_date,omitempty"`
	HasDigitalSignature   bool             `json:"has_digital_signature"`
	MetadataStripped      bool             `json:"metadata_stripped"`
	HasLayers             bool             `json:"has_layers"`
	IsScannedDocument     bool             `json:"is_scanned_document"`
	MultipleModifications bool             `json:"multiple_modifications"`
	Producer              string           `json:"producer,omitempty"`
	Author                string           `json:"author,omitempty"`
	AuthorPresent         bool             `json:"author_present"`
	Anomalies             []Anomaly        `json:"anomalies,omitempty"`
	ImageEdit             *ImageEditResult `json:"image_edit,omitempty"`
	QR                    *QRVerification  `json:"qr,omitempty"`
	Text                  *TextAnalysis    `json:"text,omitempty"`
}

// RiskLevel is the ordinal label derived from the fraud score
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskElevated RiskLevel = "elevated"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Warning is an ordered severity-tagged analysis message
type Warning struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// FraudAnalysisResult is the immutable outcome of one submission analysis
type FraudAnalysisResult struct {
	Indicators        FraudIndicators `json:"fraud_indicators"`
	FraudScore        int             `json:"fraud_score"`
	RiskLevel         RiskLevel       `json:"risk_level"`
	Warnings          []Warning       `json:"warnings"`
	AnalysisCompleted bool            `json:"analysis_completed"`
}

// RiskLevelForScore maps a fraud score to its risk band. Scores are clamped
// to [0,100] before banding.
func RiskLevelForScore(score int) RiskLevel {
	score = clampScore(score, 0, 100)
	switch {
	case score <= 20:
		return RiskLow
	case score <= 40:
		return RiskModerate
	case score <= 60:
		return RiskElevated
	case score <= 80:
		return RiskHigh
	default:
		return RiskCritical
	}
}

func clampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
