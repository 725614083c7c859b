package submissions

import (
	"bytes"
	"context"
	"time"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/clearcert/clearcert/internal/verification"
	"github.com/clearcert/clearcert/pkg/common"
	"github.com/clearcert/clearcert/pkg/logger"
	"github.com/clearcert/clearcert/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitRequest carries an uploaded certificate into the analysis pipeline
type SubmitRequest struct {
	FileName        string
	MimeType        string
	Data            []byte
	ExpectedName    string
	CertificateCode string
}

// Service orchestrates analysis, storage and persistence of submissions
type Service struct {
	repo     RepositoryInterface
	analyzer DocumentAnalyzer
	verifier Verifier
	store    ObjectStore
}

// NewService creates a new submission service
func NewService(repo RepositoryInterface, analyzer DocumentAnalyzer, verifier Verifier, store ObjectStore) *Service {
	return &Service{
		repo:     repo,
		analyzer: analyzer,
		verifier: verifier,
		store:    store,
	}
}

// Submit analyzes an upload, stores the file and persists the result.
// When a certificate code accompanies the upload, the registry check runs
// too and its outcome is logged alongside the submission.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmissionResponse, error) {
	if len(req.Data) == 0 {
		return nil, common.NewBadRequestError("file content is empty", nil)
	}

	submissionID := uuid.New()
	fileHash := forensics.HashContent(req.Data)

	doc := forensics.RawDocument{
		Data:      req.Data,
		MediaType: req.MimeType,
		Filename:  req.FileName,
	}
	analysis := s.analyzer.Analyze(ctx, doc, req.ExpectedName)

	storageKey := storage.GenerateSubmissionKey(submissionID, req.FileName)
	if _, err := s.store.Upload(ctx, storageKey, bytes.NewReader(req.Data), int64(len(req.Data)), req.MimeType); err != nil {
		logger.Error("failed to upload submission file",
			zap.String("submission_id", submissionID.String()),
			zap.Error(err))
		return nil, common.NewInternalServerError("failed to store uploaded file")
	}

	sub := &Submission{
		ID:              submissionID,
		FileName:        req.FileName,
		FileHash:        fileHash,
		FileSize:        int64(len(req.Data)),
		MimeType:        req.MimeType,
		StorageKey:      storageKey,
		ExpectedName:    req.ExpectedName,
		CertificateCode: req.CertificateCode,
		Status:          StatusAnalyzed,
		FraudScore:      analysis.FraudScore,
		RiskLevel:       analysis.RiskLevel,
		Analysis:        analysis,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		// Keep storage and the database consistent when the insert fails.
		if delErr := s.store.Delete(ctx, storageKey); delErr != nil {
			logger.Warn("failed to roll back stored file",
				zap.String("storage_key", storageKey),
				zap.Error(delErr))
		}
		logger.Error("failed to persist submission",
			zap.String("submission_id", submissionID.String()),
			zap.Error(err))
		return nil, common.NewInternalServerError("failed to save submission")
	}

	resp := &SubmissionResponse{Submission: sub}

	if req.CertificateCode != "" && s.verifier != nil {
		verifyResp, err := s.verifier.VerifyByCodeAndFile(ctx, req.CertificateCode, req.Data)
		if err != nil {
			logger.Warn("registry verification failed during submission",
				zap.String("submission_id", submissionID.String()),
				zap.Error(err))
		} else {
			resp.Verification = verifyResp
			s.logValidation(ctx, submissionID, req.CertificateCode, verifyResp.Status)
		}
	}

	logger.Info("submission analyzed",
		zap.String("submission_id", submissionID.String()),
		zap.String("file_hash", fileHash),
		zap.Int("fraud_score", sub.FraudScore),
		zap.String("risk_level", string(sub.RiskLevel)))

	return resp, nil
}

// GetSubmission retrieves a submission by ID
func (s *Service) GetSubmission(ctx context.Context, id uuid.UUID) (*Submission, error) {
	sub, err := s.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		if err == ErrSubmissionNotFound {
			return nil, common.NewNotFoundError("submission not found", err)
		}
		return nil, common.NewInternalServerError("failed to fetch submission")
	}
	return sub, nil
}

// GetStats returns aggregate submission statistics
func (s *Service) GetStats(ctx context.Context) (*SubmissionStats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, common.NewInternalServerError("failed to fetch submission stats")
	}
	return stats, nil
}

func (s *Service) logValidation(ctx context.Context, submissionID uuid.UUID, code string, status verification.ValidationStatus) {
	entry := &ValidationLog{
		ID:              uuid.New(),
		SubmissionID:    submissionID,
		CertificateCode: code,
		Status:          status,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.CreateValidationLog(ctx, entry); err != nil {
		logger.Warn("failed to record validation log",
			zap.String("submission_id", submissionID.String()),
			zap.Error(err))
	}
}
