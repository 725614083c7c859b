package verification

import (
	"io"
	"net/http"

	"github.com/clearcert/clearcert/pkg/common"
	"github.com/clearcert/clearcert/pkg/validation"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for certificate verification
type Handler struct {
	service     *Service
	maxFileSize int64
}

// NewHandler creates a new verification handler
func NewHandler(service *Service, maxFileSizeMB int) *Handler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &Handler{
		service:     service,
		maxFileSize: int64(maxFileSizeMB) * 1024 * 1024,
	}
}

// VerifyByCode verifies a certificate code without a file
func (h *Handler) VerifyByCode(c *gin.Context) {
	var req VerifyByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindingErrorMessage(err))
		return
	}

	resp, err := h.service.VerifyByCode(c.Request.Context(), req.CertificateCode)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.SuccessResponse(c, resp)
}

// VerifyByFile verifies an uploaded document against the registry by hash
func (h *Handler) VerifyByFile(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.service.VerifyByFile(c.Request.Context(), data)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.SuccessResponse(c, resp)
}

// VerifyByCodeAndFile performs the combined code+file verification
func (h *Handler) VerifyByCodeAndFile(c *gin.Context) {
	code := c.PostForm("certificate_code")
	if code == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "certificate_code is required")
		return
	}

	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.service.VerifyByCodeAndFile(c.Request.Context(), code, data)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.SuccessResponse(c, resp)
}

// RegisterCertificate adds a known-genuine certificate to the registry
func (h *Handler) RegisterCertificate(c *gin.Context) {
	var req RegisterCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindingErrorMessage(err))
		return
	}

	record, err := h.service.RegisterRecord(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.CreatedResponse(c, record)
}

// GetCertificate returns a registry record by code
func (h *Handler) GetCertificate(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "certificate code is required")
		return
	}

	record, err := h.service.GetRecord(c.Request.Context(), code)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.SuccessResponse(c, record)
}

// readUpload reads the multipart "file" field, enforcing the size limit
func (h *Handler) readUpload(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required")
		return nil, false
	}
	if fileHeader.Size > h.maxFileSize {
		common.ErrorResponse(c, http.StatusBadRequest, "file size exceeds the maximum")
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil || int64(len(data)) > h.maxFileSize {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return nil, false
	}

	return data, true
}

// RegisterRoutes registers verification routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	verify := rg.Group("/verify")
	{
		verify.POST("/code", h.VerifyByCode)
		verify.POST("/file", h.VerifyByFile)
		verify.POST("", h.VerifyByCodeAndFile)
	}

	registry := rg.Group("/registry")
	{
		registry.POST("", h.RegisterCertificate)
		registry.GET("/:code", h.GetCertificate)
	}
}
