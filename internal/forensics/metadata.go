package forensics

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Editor fingerprints searched in creator/producer strings and EXIF payloads.
// Matching is case-insensitive substring search.
var editorFingerprints = []string{
	"photoshop",
	"gimp",
	"illustrator",
	"inkscape",
	"canva",
	"corel",
	"paint.net",
	"pixlr",
	"affinity",
	"photopea",
	"lightroom",
}

var (
	rePDFVersion   = regexp.MustCompile(`%PDF-(\d+\.\d+)`)
	reLiteralField = map[string]*regexp.Regexp{
		"Creator":  regexp.MustCompile(`/Creator\s*\(([^)]*)\)`),
		"Producer": regexp.MustCompile(`/Producer\s*\(([^)]*)\)`),
		"Author":   regexp.MustCompile(`/Author\s*\(([^)]*)\)`),
	}
	reHexField = map[string]*regexp.Regexp{
		"Creator":  regexp.MustCompile(`/Creator\s*<([0-9A-Fa-f\s]+)>`),
		"Producer": regexp.MustCompile(`/Producer\s*<([0-9A-Fa-f\s]+)>`),
		"Author":   regexp.MustCompile(`/Author\s*<([0-9A-Fa-f\s]+)>`),
	}
	reCreationDate = regexp.MustCompile(`/CreationDate\s*\(D:(\d{8})(\d{6})?`)
	reModDate      = regexp.MustCompile(`/ModDate\s*\(D:(\d{8})(\d{6})?`)
	rePageCount    = regexp.MustCompile(`/Count\s+(\d+)`)
	reObject       = regexp.MustCompile(`\d+\s+\d+\s+obj\b`)
	reTextPosOps   = regexp.MustCompile(`\b(?:Td|TD|Tm|T\*)\b`)
	reClipOps      = regexp.MustCompile(`\bW\s*n\b`)
	reTransformOps = regexp.MustCompile(`\bcm\b`)
	reGStateOps    = regexp.MustCompile(`\bgs\b`)
	reColorOps     = regexp.MustCompile(`\b(?:rg|RG|sc|SC|scn|SCN|k|K)\b`)
)

// MetadataAnalyzer extracts structural and metadata indicators from raw
// document bytes. All failures are swallowed; a document that cannot be
// parsed yields neutral indicators, never fraud evidence.
type MetadataAnalyzer struct{}

// NewMetadataAnalyzer creates a metadata analyzer
func NewMetadataAnalyzer() *MetadataAnalyzer {
	return &MetadataAnalyzer{}
}

// AnalyzePDF scans the PDF byte stream for metadata and structural anomalies.
// The bytes are treated as single-byte text: ASCII tokens survive the
// conversion and binary stream content is ignored by the token regexes.
func (a *MetadataAnalyzer) AnalyzePDF(data []byte) (meta *PDFMetadata, anomalies []Anomaly) {
	meta = &PDFMetadata{}

	defer func() {
		// A parse failure is never itself treated as fraud evidence.
		if r := recover(); r != nil {
			meta = &PDFMetadata{}
			anomalies = nil
		}
	}()

	content := string(data)

	if m := rePDFVersion.FindStringSubmatch(content); m != nil {
		meta.PDFVersion = m[1]
	}

	meta.Creator = extractStringField(content, "Creator")
	meta.Producer = extractStringField(content, "Producer")
	meta.Author = extractStringField(content, "Author")

	meta.CreationDate = parsePDFDate(reCreationDate.FindStringSubmatch(content))
	meta.ModificationDate = parsePDFDate(reModDate.FindStringSubmatch(content))

	meta.HasDigitalSignature = strings.Contains(content, "/Sig") ||
		strings.Contains(content, "/ByteRange") ||
		strings.Contains(content, "/SigFlags")

	meta.EOFMarkerCount = strings.Count(content, "%%EOF")
	meta.MultipleModifications = meta.EOFMarkerCount > 1

	hasInfo := strings.Contains(content, "/Info")
	hasXMP := strings.Contains(content, "xpacket") || strings.Contains(content, "x:xmpmeta")
	meta.MetadataStripped = !hasInfo && !hasXMP

	hasImages := strings.Contains(content, "/Image") || strings.Contains(content, "/DCTDecode")
	hasText := strings.Contains(content, "/Font") || strings.Contains(content, "BT")
	meta.IsScannedDocument = hasImages && !hasText

	meta.HasLayers = strings.Contains(content, "/OCG") || strings.Contains(content, "/OCProperties")

	for _, m := range rePageCount.FindAllStringSubmatch(content, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > meta.PageCount {
			meta.PageCount = n
		}
	}

	anomalies = a.structuralAnomalies(content)
	return meta, anomalies
}

// structuralAnomalies applies deliberately generous thresholds so ordinary
// generator output does not trip them.
func (a *MetadataAnalyzer) structuralAnomalies(content string) []Anomaly {
	var anomalies []Anomaly

	if n := strings.Count(content, "/ObjStm"); n > 20 {
		anomalies = append(anomalies, Anomaly{
			Type:        "object_streams",
			Description: "unusually high object stream count: " + strconv.Itoa(n),
			Severity:    SeverityLow,
		})
	}

	if n := strings.Count(content, "/Annot"); n > 10 {
		anomalies = append(anomalies, Anomaly{
			Type:        "annotations",
			Description: "unusually high annotation count: " + strconv.Itoa(n),
			Severity:    SeverityLow,
		})
	}

	if n := len(reObject.FindAllString(content, -1)); n > 500 {
		anomalies = append(anomalies, Anomaly{
			Type:        "object_count",
			Description: "unusually high object count: " + strconv.Itoa(n),
			Severity:    SeverityLow,
		})
	}

	streams := strings.Count(content, "stream")
	endstreams := strings.Count(content, "endstream")
	// "stream" matches "endstream" too, so balance means streams == 2*endstreams
	if streams != endstreams*2 {
		anomalies = append(anomalies, Anomaly{
			Type:        "unbalanced_streams",
			Description: "stream/endstream tokens are unbalanced",
			Severity:    SeverityMedium,
		})
	}

	densityChecks := []struct {
		name      string
		re        *regexp.Regexp
		threshold int
	}{
		{"text_positioning_ops", reTextPosOps, 1500},
		{"clipping_ops", reClipOps, 300},
		{"transform_ops", reTransformOps, 800},
		{"graphics_state_ops", reGStateOps, 400},
		{"color_ops", reColorOps, 1200},
	}
	for _, check := range densityChecks {
		if n := len(check.re.FindAllString(content, -1)); n > check.threshold {
			anomalies = append(anomalies, Anomaly{
				Type:        check.name,
				Description: "operator density above expected range: " + strconv.Itoa(n),
				Severity:    SeverityLow,
			})
		}
	}

	return anomalies
}

// extractStringField pulls a dictionary string value in either its literal
// or hex-string form. Hex strings are decoded and NUL-stripped (UTF-16
// metadata degrades to its ASCII bytes).
func extractStringField(content, field string) string {
	if m := reLiteralField[field].FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reHexField[field].FindStringSubmatch(content); m != nil {
		compact := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, m[1])
		if len(compact)%2 == 1 {
			compact += "0"
		}
		decoded, err := hex.DecodeString(compact)
		if err != nil {
			return ""
		}
		cleaned := strings.ReplaceAll(string(decoded), "\x00", "")
		// Skip the UTF-16 BOM if present
		cleaned = strings.TrimPrefix(cleaned, "\xfe\xff")
		cleaned = strings.TrimPrefix(cleaned, "\xff\xfe")
		return strings.TrimSpace(cleaned)
	}
	return ""
}

// parsePDFDate parses D:YYYYMMDD[HHMMSS] submatches; a missing time component
// defaults to midnight.
func parsePDFDate(m []string) *time.Time {
	if m == nil {
		return nil
	}
	datePart := m[1]
	timePart := "000000"
	if len(m) > 2 && m[2] != "" {
		timePart = m[2]
	}
	t, err := time.Parse("20060102150405", datePart+timePart)
	if err != nil {
		return nil
	}
	return &t
}
