package submissions

import (
	"context"
	"io"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/clearcert/clearcert/internal/verification"
	"github.com/clearcert/clearcert/pkg/storage"
	"github.com/google/uuid"
)

// RepositoryInterface defines the submission data access contract
type RepositoryInterface interface {
	CreateSubmission(ctx context.Context, sub *Submission) error
	CreateValidationLog(ctx context.Context, log *ValidationLog) error
	GetSubmissionByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	GetStats(ctx context.Context) (*SubmissionStats, error)
}

// DocumentAnalyzer runs the fraud analysis pipeline on an uploaded document
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc forensics.RawDocument, expectedName string) *forensics.FraudAnalysisResult
}

// Verifier checks uploads against the verified certificate registry
type Verifier interface {
	VerifyByCodeAndFile(ctx context.Context, code string, content []byte) (*verification.VerificationResponse, error)
}

// ObjectStore persists uploaded files
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.UploadResult, error)
	Delete(ctx context.Context, key string) error
}
