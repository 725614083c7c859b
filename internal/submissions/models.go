package submissions

import (
	"time"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/clearcert/clearcert/internal/verification"
	"github.com/google/uuid"
)

// SubmissionStatus represents the processing state of a submission
type SubmissionStatus string

const (
	StatusAnalyzed SubmissionStatus = "analyzed"
	StatusFailed   SubmissionStatus = "failed"
)

// Submission represents an analyzed certificate upload
type Submission struct {
	ID              uuid.UUID                      `json:"id"`
	FileName        string                         `json:"file_name"`
	FileHash        string                         `json:"file_hash"`
	FileSize        int64                          `json:"file_size"`
	MimeType        string                         `json:"mime_type"`
	StorageKey      string                         `json:"storage_key"`
	ExpectedName    string                         `json:"expected_name,omitempty"`
	CertificateCode string                         `json:"certificate_code,omitempty"`
	Status          SubmissionStatus               `json:"status"`
	FraudScore      int                            `json:"fraud_score"`
	RiskLevel       forensics.RiskLevel            `json:"risk_level"`
	Analysis        *forensics.FraudAnalysisResult `json:"analysis,omitempty"`
	CreatedAt       time.Time                      `json:"created_at"`
}

// ValidationLog records a registry lookup performed alongside a submission
type ValidationLog struct {
	ID              uuid.UUID                     `json:"id"`
	SubmissionID    uuid.UUID                     `json:"submission_id"`
	CertificateCode string                        `json:"certificate_code"`
	Status          verification.ValidationStatus `json:"status"`
	CreatedAt       time.Time                     `json:"created_at"`
}

// SubmissionResponse is the API payload returned after analysis
type SubmissionResponse struct {
	Submission   *Submission                        `json:"submission"`
	Verification *verification.VerificationResponse `json:"verification,omitempty"`
}

// SubmissionStats aggregates submission counts by risk level
type SubmissionStats struct {
	TotalSubmissions  int64            `json:"total_submissions"`
	AverageFraudScore float64          `json:"average_fraud_score"`
	ByRiskLevel       map[string]int64 `json:"by_risk_level"`
}
