package verification

import (
	"time"

	"github.com/google/uuid"
)

// ValidationStatus is the tri-state verification outcome
type ValidationStatus string

const (
	StatusValid    ValidationStatus = "valid"
	StatusFake     ValidationStatus = "fake"
	StatusTampered ValidationStatus = "tampered"
)

// VerifiedCertificateRecord is a registry entry for a known-genuine
// certificate.
type VerifiedCertificateRecord struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	CertificateCode     string    `json:"certificate_code" db:"certificate_code"`
	IssuingOrganization string    `json:"issuing_organization" db:"issuing_organization"`
	FileHash            string    `json:"file_hash" db:"file_hash"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// CertificateSummary is the public subset returned to callers
type CertificateSummary struct {
	CertificateCode     string `json:"certificate_code"`
	IssuingOrganization string `json:"issuing_organization"`
}

// VerificationResponse is the outcome of a verification lookup
type VerificationResponse struct {
	Status      ValidationStatus    `json:"status"`
	Certificate *CertificateSummary `json:"certificate,omitempty"`
	Message     string              `json:"message"`
	VerifiedAt  string              `json:"verified_at"`
}

// RegisterCertificateRequest registers a known-genuine certificate
type RegisterCertificateRequest struct {
	CertificateCode     string `json:"certificate_code" binding:"required,min=4,max=64"`
	IssuingOrganization string `json:"issuing_organization" binding:"required,min=2,max=200"`
	FileHash            string `json:"file_hash" binding:"required,len=64,hexadecimal"`
}

// VerifyByCodeRequest verifies a certificate code without a file
type VerifyByCodeRequest struct {
	CertificateCode string `json:"certificate_code" binding:"required"`
}
