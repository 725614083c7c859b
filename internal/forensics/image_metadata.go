package forensics

import (
	"bytes"
	"encoding/binary"
	"regexp"
	"strings"
	"time"
)

var reEXIFDate = regexp.MustCompile(`\d{4}:\d{2}:\d{2} \d{2}:\d{2}:\d{2}`)

// AnalyzeImage extracts metadata indicators from JPEG or PNG bytes. Raster
// files never carry a digital signature flag; the only signals are editor
// fingerprints, capture dates, and stripped metadata.
func (a *MetadataAnalyzer) AnalyzeImage(kind DocumentKind, data []byte) (meta *ImageMetadata) {
	meta = &ImageMetadata{Format: kind}

	defer func() {
		if r := recover(); r != nil {
			meta = &ImageMetadata{Format: kind}
		}
	}()

	switch kind {
	case KindJPEG:
		a.analyzeJPEG(data, meta)
	case KindPNG:
		a.analyzePNG(data, meta)
	}

	return meta
}

// analyzeJPEG walks the marker segments looking for the EXIF (APP1) payload.
func (a *MetadataAnalyzer) analyzeJPEG(data []byte, meta *ImageMetadata) {
	exif := findEXIFSegment(data)
	if exif == nil {
		meta.MetadataStripped = true
		return
	}

	payload := strings.ToLower(string(exif))
	for _, fp := range editorFingerprints {
		if strings.Contains(payload, fp) {
			meta.Software = fp
			break
		}
	}

	if m := reEXIFDate.FindString(string(exif)); m != "" {
		if t, err := time.Parse("2006:01:02 15:04:05", m); err == nil {
			meta.CaptureDate = &t
		}
	}
}

// findEXIFSegment walks JPEG markers from offset 2 and returns the APP1
// payload, or nil when no EXIF segment exists.
func findEXIFSegment(data []byte) []byte {
	offset := 2
	for offset+4 <= len(data) {
		if data[offset] != 0xFF {
			return nil
		}
		marker := data[offset+1]

		// Standalone markers carry no length field
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD9) {
			offset += 2
			continue
		}
		// Scan data follows SOS; metadata segments never appear after it
		if marker == 0xDA {
			return nil
		}

		length := int(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
		if length < 2 || offset+2+length > len(data) {
			return nil
		}

		if marker == 0xE1 {
			segment := data[offset+4 : offset+2+length]
			if bytes.HasPrefix(segment, []byte("Exif")) {
				return segment
			}
		}

		offset += 2 + length
	}
	return nil
}

// analyzePNG searches for textual chunks and editor fingerprints.
func (a *MetadataAnalyzer) analyzePNG(data []byte, meta *ImageMetadata) {
	if !bytes.HasPrefix(data, pngSignature) {
		meta.MetadataStripped = true
		return
	}

	hasText := bytes.Contains(data, []byte("tEXt"))
	hasIntlText := bytes.Contains(data, []byte("iTXt"))
	if !hasText && !hasIntlText {
		meta.MetadataStripped = true
		return
	}

	payload := strings.ToLower(string(data))
	for _, fp := range editorFingerprints {
		if strings.Contains(payload, fp) {
			meta.Software = fp
			break
		}
	}

	if m := reEXIFDate.FindString(string(data)); m != "" {
		if t, err := time.Parse("2006:01:02 15:04:05", m); err == nil {
			meta.CaptureDate = &t
		}
	}
}
