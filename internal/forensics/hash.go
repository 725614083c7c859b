package forensics

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

var (
	pdfSignature  = []byte("%PDF-")
	jpegSignature = []byte{0xFF, 0xD8}
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// HashContent returns the hex-encoded SHA-256 digest of the full document
// content. The digest is the content-addressed identity key for registry
// lookups.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Classify determines the document kind from the declared media type and the
// leading bytes. The byte signature wins over the declared type; a file that
// matches neither is unsupported and the pipeline degrades instead of
// aborting.
func Classify(mediaType string, data []byte) DocumentKind {
	switch {
	case bytes.HasPrefix(data, pdfSignature):
		return KindPDF
	case bytes.HasPrefix(data, jpegSignature):
		return KindJPEG
	case bytes.HasPrefix(data, pngSignature):
		return KindPNG
	}

	// Fall back to the declared type only when the signature is absent but
	// the declaration is unambiguous and the payload is non-empty.
	if len(data) > 0 {
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case "application/pdf":
			if bytes.Contains(data[:min(len(data), 1024)], pdfSignature) {
				return KindPDF
			}
		}
	}

	return KindUnsupported
}
