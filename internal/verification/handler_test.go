package verification

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(repo RepositoryInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(NewService(repo, nil), 1)
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func multipartBody(t *testing.T, fields map[string]string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileContent != nil {
		part, err := writer.CreateFormFile("file", "certificate.pdf")
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestVerifyByCodeEndpoint(t *testing.T) {
	repo := new(mockRepository)
	router := setupRouter(repo)

	record := registeredRecord("CERT-100", []byte("content"))
	repo.On("GetByCode", mock.Anything, "CERT-100").Return(record, nil).Once()

	payload, _ := json.Marshal(VerifyByCodeRequest{CertificateCode: "CERT-100"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/code", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    VerificationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, StatusValid, resp.Data.Status)
}

func TestVerifyByCodeEndpointMissingCode(t *testing.T) {
	router := setupRouter(new(mockRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/code", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyByFileEndpoint(t *testing.T) {
	repo := new(mockRepository)
	router := setupRouter(repo)

	content := []byte("%PDF-1.4 registered original")
	repo.On("GetByHash", mock.Anything, forensics.HashContent(content)).
		Return(registeredRecord("CERT-101", content), nil).Once()

	body, contentType := multipartBody(t, nil, content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyByFileEndpointMissingFile(t *testing.T) {
	router := setupRouter(new(mockRepository))

	body, contentType := multipartBody(t, map[string]string{"other": "field"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCombinedVerifyEndpointTampered(t *testing.T) {
	repo := new(mockRepository)
	router := setupRouter(repo)

	record := registeredRecord("CERT-102", []byte("the original"))
	repo.On("GetByCode", mock.Anything, "CERT-102").Return(record, nil).Once()

	body, contentType := multipartBody(t, map[string]string{"certificate_code": "CERT-102"}, []byte("doctored bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data VerificationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusTampered, resp.Data.Status)
}

func TestRegisterCertificateEndpoint(t *testing.T) {
	repo := new(mockRepository)
	router := setupRouter(repo)

	fileHash := forensics.HashContent([]byte("original"))
	repo.On("GetByCode", mock.Anything, "CERT-103").Return(nil, ErrRecordNotFound).Once()
	repo.On("CreateRecord", mock.Anything, mock.Anything).Return(nil).Once()

	payload, _ := json.Marshal(RegisterCertificateRequest{
		CertificateCode:     "CERT-103",
		IssuingOrganization: "Test University",
		FileHash:            fileHash,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestRegisterCertificateEndpointRejectsBadHash(t *testing.T) {
	router := setupRouter(new(mockRepository))

	payload, _ := json.Marshal(RegisterCertificateRequest{
		CertificateCode:     "CERT-104",
		IssuingOrganization: "Test University",
		FileHash:            "not-a-sha256-hash",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCertificateEndpointNotFound(t *testing.T) {
	repo := new(mockRepository)
	router := setupRouter(repo)

	repo.On("GetByCode", mock.Anything, "MISSING").Return(nil, ErrRecordNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry/MISSING", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
