package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider represents a storage provider type
type Provider string

const (
	ProviderS3    Provider = "s3"
	ProviderLocal Provider = "local"
)

// UploadResult contains the result of an upload operation
type UploadResult struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Storage interface defines the storage operations
type Storage interface {
	// Upload uploads a file to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error)

	// Download downloads a file from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete deletes a file from storage
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a file
	GetURL(key string) string

	// Exists checks if a file exists
	Exists(ctx context.Context, key string) (bool, error)
}

// GenerateSubmissionKey generates a unique storage key for an uploaded
// certificate document.
func GenerateSubmissionKey(submissionID uuid.UUID, filename string) string {
	ext := path.Ext(filename)
	uniqueID := uuid.New().String()[:8]
	timestamp := time.Now().Format("20060102")

	// Format: certificates/{submission_id}/{timestamp}_{unique_id}{ext}
	return fmt.Sprintf("certificates/%s/%s_%s%s",
		submissionID.String(),
		timestamp,
		uniqueID,
		ext,
	)
}

// ValidateMimeType checks if the mime type is allowed
func ValidateMimeType(mimeType string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		return true
	}

	mimeType = strings.ToLower(mimeType)
	for _, allowed := range allowedTypes {
		if strings.ToLower(allowed) == mimeType {
			return true
		}
		// Support wildcards like "image/*"
		if strings.HasSuffix(allowed, "/*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}
	return false
}

// GetMimeTypeFromExtension returns the MIME type for common file extensions
func GetMimeTypeFromExtension(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	mimeTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".pdf":  "application/pdf",
	}

	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsImageMimeType checks if the mime type is an image
func IsImageMimeType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// IsPDFMimeType checks if the mime type is a PDF
func IsPDFMimeType(mimeType string) bool {
	return strings.ToLower(mimeType) == "application/pdf"
}
