package verification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/clearcert/clearcert/pkg/common"
	"github.com/clearcert/clearcert/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const codeCacheTTL = 5 * time.Minute

// Service implements certificate verification against the verified registry
type Service struct {
	repo  RepositoryInterface
	cache ResultCache
}

// NewService creates a new verification service. cache may be nil; code-only
// verifications then always hit the repository.
func NewService(repo RepositoryInterface, cache ResultCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// VerifyByFile hashes the uploaded bytes and looks the digest up in the
// registry. A hit is valid; a miss classifies as fake.
func (s *Service) VerifyByFile(ctx context.Context, data []byte) (*VerificationResponse, error) {
	fileHash := forensics.HashContent(data)

	record, err := s.repo.GetByHash(ctx, fileHash)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return s.respond(StatusFake, nil,
				"document does not match any registered certificate"), nil
		}
		return nil, common.NewInternalServerError("failed to look up certificate")
	}

	return s.respond(StatusValid, record, "document matches a registered certificate"), nil
}

// VerifyByCode looks up a certificate code. Without a file there is no way
// to detect tampering, so the outcome is valid or fake only.
func (s *Service) VerifyByCode(ctx context.Context, code string) (*VerificationResponse, error) {
	if cached := s.cachedResponse(ctx, code); cached != nil {
		return cached, nil
	}

	record, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			resp := s.respond(StatusFake, nil, "certificate code is not registered")
			s.storeCached(ctx, code, resp)
			return resp, nil
		}
		return nil, common.NewInternalServerError("failed to look up certificate")
	}

	resp := s.respond(StatusValid, record, "certificate code is registered")
	s.storeCached(ctx, code, resp)
	return resp, nil
}

// VerifyByCodeAndFile performs the combined check. This is the only path
// that can classify a document as tampered: the code exists but the uploaded
// bytes differ from the registered original.
func (s *Service) VerifyByCodeAndFile(ctx context.Context, code string, data []byte) (*VerificationResponse, error) {
	record, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return s.respond(StatusFake, nil, "certificate code is not registered"), nil
		}
		return nil, common.NewInternalServerError("failed to look up certificate")
	}

	fileHash := forensics.HashContent(data)
	if fileHash == record.FileHash {
		return s.respond(StatusValid, record, "document matches the registered original"), nil
	}

	return s.respond(StatusTampered, record,
		"certificate code is registered but the document differs from the original"), nil
}

// RegisterRecord adds a known-genuine certificate to the registry
func (s *Service) RegisterRecord(ctx context.Context, req *RegisterCertificateRequest) (*VerifiedCertificateRecord, error) {
	if existing, err := s.repo.GetByCode(ctx, req.CertificateCode); err == nil && existing != nil {
		return nil, common.NewConflictError("certificate code is already registered", nil)
	}

	record := &VerifiedCertificateRecord{
		ID:                  uuid.New(),
		CertificateCode:     req.CertificateCode,
		IssuingOrganization: req.IssuingOrganization,
		FileHash:            req.FileHash,
		CreatedAt:           time.Now(),
	}

	if err := s.repo.CreateRecord(ctx, record); err != nil {
		return nil, common.NewInternalServerError("failed to register certificate")
	}

	// Invalidate any cached fake verdict for this code
	s.storeCached(ctx, req.CertificateCode, nil)

	logger.Info("Certificate registered",
		zap.String("certificate_code", record.CertificateCode),
		zap.String("organization", record.IssuingOrganization),
	)

	return record, nil
}

// GetRecord returns a registry record by code
func (s *Service) GetRecord(ctx context.Context, code string) (*VerifiedCertificateRecord, error) {
	record, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, common.NewNotFoundError("certificate not found", err)
		}
		return nil, common.NewInternalServerError("failed to look up certificate")
	}
	return record, nil
}

func (s *Service) respond(status ValidationStatus, record *VerifiedCertificateRecord, message string) *VerificationResponse {
	resp := &VerificationResponse{
		Status:     status,
		Message:    message,
		VerifiedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if record != nil {
		resp.Certificate = &CertificateSummary{
			CertificateCode:     record.CertificateCode,
			IssuingOrganization: record.IssuingOrganization,
		}
	}
	return resp
}

func cacheKey(code string) string {
	return "verification:code:" + code
}

func (s *Service) cachedResponse(ctx context.Context, code string) *VerificationResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.GetString(ctx, cacheKey(code))
	if err != nil || raw == "" {
		return nil
	}
	var resp VerificationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	// Refresh the timestamp; the verdict is cached, the lookup is not
	resp.VerifiedAt = time.Now().UTC().Format(time.RFC3339)
	return &resp
}

func (s *Service) storeCached(ctx context.Context, code string, resp *VerificationResponse) {
	if s.cache == nil {
		return
	}
	if resp == nil {
		_ = s.cache.SetWithExpiration(ctx, cacheKey(code), "", time.Millisecond)
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.SetWithExpiration(ctx, cacheKey(code), string(raw), codeCacheTTL); err != nil {
		logger.Warn("Failed to cache verification result", zap.Error(err))
	}
}
