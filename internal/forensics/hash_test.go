package forensics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContentIsDeterministic(t *testing.T) {
	data := []byte("certificate content")

	first := HashContent(data)
	second := HashContent(data)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Equal(t, strings.ToLower(first), first)
}

func TestHashContentChangesWithSingleBit(t *testing.T) {
	data := []byte("certificate content")
	modified := make([]byte, len(data))
	copy(modified, data)
	modified[0] ^= 0x01

	assert.NotEqual(t, HashContent(data), HashContent(modified))
}

func TestHashContentEmptyInput(t *testing.T) {
	assert.Len(t, HashContent(nil), 64)
	assert.Equal(t, HashContent(nil), HashContent([]byte{}))
}

func TestClassifySignatureWinsOverDeclaredType(t *testing.T) {
	jpegData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

	// Declared PDF but JPEG bytes: the signature decides
	assert.Equal(t, KindJPEG, Classify("application/pdf", jpegData))
}

func TestClassifyKnownSignatures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want DocumentKind
	}{
		{"pdf", []byte("%PDF-1.7\nrest of file"), KindPDF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, KindJPEG},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, KindPNG},
		{"plain text", []byte("hello world"), KindUnsupported},
		{"empty", nil, KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify("", tt.data))
		})
	}
}

func TestClassifyDeclaredPDFWithLeadingJunk(t *testing.T) {
	// Some generators prepend bytes before the header; the declared type
	// triggers a deeper scan of the first kilobyte.
	data := append([]byte("\xef\xbb\xbfjunk"), []byte("%PDF-1.4\n")...)

	assert.Equal(t, KindPDF, Classify("application/pdf", data))
	assert.Equal(t, KindUnsupported, Classify("text/plain", data))
}
