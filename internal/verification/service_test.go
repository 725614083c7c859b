package verification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/clearcert/clearcert/pkg/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateRecord(ctx context.Context, record *VerifiedCertificateRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockRepository) GetByCode(ctx context.Context, code string) (*VerifiedCertificateRecord, error) {
	args := m.Called(ctx, code)
	record, _ := args.Get(0).(*VerifiedCertificateRecord)
	return record, args.Error(1)
}

func (m *mockRepository) GetByHash(ctx context.Context, fileHash string) (*VerifiedCertificateRecord, error) {
	args := m.Called(ctx, fileHash)
	record, _ := args.Get(0).(*VerifiedCertificateRecord)
	return record, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func registeredRecord(code string, content []byte) *VerifiedCertificateRecord {
	return &VerifiedCertificateRecord{
		ID:                  uuid.New(),
		CertificateCode:     code,
		IssuingOrganization: "Test University",
		FileHash:            forensics.HashContent(content),
		CreatedAt:           time.Now(),
	}
}

func TestVerifyByFileValid(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	content := []byte("genuine certificate bytes")
	record := registeredRecord("CERT-001", content)
	repo.On("GetByHash", ctx, record.FileHash).Return(record, nil).Once()

	resp, err := service.VerifyByFile(ctx, content)

	require.NoError(t, err)
	assert.Equal(t, StatusValid, resp.Status)
	require.NotNil(t, resp.Certificate)
	assert.Equal(t, "CERT-001", resp.Certificate.CertificateCode)
	repo.AssertExpectations(t)
}

func TestVerifyByFileUnknownHashIsFake(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	repo.On("GetByHash", ctx, mock.Anything).Return(nil, ErrRecordNotFound).Once()

	resp, err := service.VerifyByFile(ctx, []byte("unknown document"))

	require.NoError(t, err)
	assert.Equal(t, StatusFake, resp.Status)
	assert.Nil(t, resp.Certificate)
}

func TestVerifyByFileRepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	repo.On("GetByHash", ctx, mock.Anything).Return(nil, errors.New("connection lost")).Once()

	resp, err := service.VerifyByFile(ctx, []byte("document"))

	require.Error(t, err)
	assert.Nil(t, resp)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.StatusCode)
}

func TestVerifyByCodeValid(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	record := registeredRecord("CERT-002", []byte("content"))
	repo.On("GetByCode", ctx, "CERT-002").Return(record, nil).Once()

	resp, err := service.VerifyByCode(ctx, "CERT-002")

	require.NoError(t, err)
	assert.Equal(t, StatusValid, resp.Status)
	assert.NotEmpty(t, resp.VerifiedAt)
}

func TestVerifyByCodeUnknownIsFake(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	repo.On("GetByCode", ctx, "NOPE").Return(nil, ErrRecordNotFound).Once()

	resp, err := service.VerifyByCode(ctx, "NOPE")

	require.NoError(t, err)
	assert.Equal(t, StatusFake, resp.Status)
}

func TestVerifyByCodeUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	cache := new(mockCache)
	service := NewService(repo, cache)

	cached, _ := json.Marshal(&VerificationResponse{
		Status:  StatusValid,
		Message: "certificate code is registered",
		Certificate: &CertificateSummary{
			CertificateCode:     "CERT-003",
			IssuingOrganization: "Test University",
		},
	})
	cache.On("GetString", ctx, "verification:code:CERT-003").Return(string(cached), nil).Once()

	resp, err := service.VerifyByCode(ctx, "CERT-003")

	require.NoError(t, err)
	assert.Equal(t, StatusValid, resp.Status)
	repo.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
}

func TestVerifyByCodeCachesTheVerdict(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	cache := new(mockCache)
	service := NewService(repo, cache)

	record := registeredRecord("CERT-004", []byte("content"))
	cache.On("GetString", ctx, "verification:code:CERT-004").Return("", nil).Once()
	repo.On("GetByCode", ctx, "CERT-004").Return(record, nil).Once()
	cache.On("SetWithExpiration", ctx, "verification:code:CERT-004", mock.Anything, 5*time.Minute).
		Return(nil).Once()

	_, err := service.VerifyByCode(ctx, "CERT-004")

	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestVerifyByCodeAndFileValid(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	content := []byte("the original document")
	record := registeredRecord("CERT-005", content)
	repo.On("GetByCode", ctx, "CERT-005").Return(record, nil).Once()

	resp, err := service.VerifyByCodeAndFile(ctx, "CERT-005", content)

	require.NoError(t, err)
	assert.Equal(t, StatusValid, resp.Status)
}

func TestVerifyByCodeAndFileTampered(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	record := registeredRecord("CERT-006", []byte("the original document"))
	repo.On("GetByCode", ctx, "CERT-006").Return(record, nil).Once()

	resp, err := service.VerifyByCodeAndFile(ctx, "CERT-006", []byte("a doctored document"))

	require.NoError(t, err)
	assert.Equal(t, StatusTampered, resp.Status)
	require.NotNil(t, resp.Certificate)
	assert.Equal(t, "CERT-006", resp.Certificate.CertificateCode)
}

func TestVerifyByCodeAndFileUnknownCodeIsFake(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	repo.On("GetByCode", ctx, "NOPE").Return(nil, ErrRecordNotFound).Once()

	resp, err := service.VerifyByCodeAndFile(ctx, "NOPE", []byte("any document"))

	require.NoError(t, err)
	assert.Equal(t, StatusFake, resp.Status)
	assert.Nil(t, resp.Certificate)
}

func TestRegisterRecord(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	req := &RegisterCertificateRequest{
		CertificateCode:     "CERT-007",
		IssuingOrganization: "Test University",
		FileHash:            forensics.HashContent([]byte("original")),
	}
	repo.On("GetByCode", ctx, "CERT-007").Return(nil, ErrRecordNotFound).Once()
	repo.On("CreateRecord", ctx, mock.MatchedBy(func(r *VerifiedCertificateRecord) bool {
		return r.CertificateCode == "CERT-007" && r.FileHash == req.FileHash && r.ID != uuid.Nil
	})).Return(nil).Once()

	record, err := service.RegisterRecord(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "CERT-007", record.CertificateCode)
	repo.AssertExpectations(t)
}

func TestRegisterRecordDuplicateCode(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	existing := registeredRecord("CERT-008", []byte("content"))
	repo.On("GetByCode", ctx, "CERT-008").Return(existing, nil).Once()

	record, err := service.RegisterRecord(ctx, &RegisterCertificateRequest{
		CertificateCode:     "CERT-008",
		IssuingOrganization: "Test University",
		FileHash:            existing.FileHash,
	})

	require.Error(t, err)
	assert.Nil(t, record)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.StatusCode)
	repo.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
}

func TestGetRecordNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	service := NewService(repo, nil)

	repo.On("GetByCode", ctx, "MISSING").Return(nil, ErrRecordNotFound).Once()

	record, err := service.GetRecord(ctx, "MISSING")

	require.Error(t, err)
	assert.Nil(t, record)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.StatusCode)
}
