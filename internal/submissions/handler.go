package submissions

import (
	"io"
	"net/http"

	"github.com/clearcert/clearcert/pkg/common"
	"github.com/clearcert/clearcert/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// allowedMimeTypes lists the document formats the pipeline accepts
var allowedMimeTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

// Handler handles HTTP requests for certificate submissions
type Handler struct {
	service     *Service
	maxFileSize int64
}

// NewHandler creates a new submission handler
func NewHandler(service *Service, maxFileSizeMB int) *Handler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &Handler{
		service:     service,
		maxFileSize: int64(maxFileSizeMB) * 1024 * 1024,
	}
}

// CreateSubmission accepts a multipart upload and runs the analysis pipeline
func (h *Handler) CreateSubmission(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > h.maxFileSize {
		common.ErrorResponse(c, http.StatusBadRequest, "file size exceeds the maximum")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = storage.GetMimeTypeFromExtension(fileHeader.Filename)
	}
	if !storage.ValidateMimeType(mimeType, allowedMimeTypes) {
		common.ErrorResponse(c, http.StatusBadRequest, "unsupported file type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil || int64(len(data)) > h.maxFileSize {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return
	}

	req := &SubmitRequest{
		FileName:        fileHeader.Filename,
		MimeType:        mimeType,
		Data:            data,
		ExpectedName:    c.PostForm("expected_name"),
		CertificateCode: c.PostForm("certificate_code"),
	}

	resp, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.CreatedResponse(c, resp)
}

// GetSubmission returns a previously analyzed submission
func (h *Handler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid submission ID")
		return
	}

	sub, err := h.service.GetSubmission(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.SuccessResponse(c, sub)
}

// GetStats returns aggregate submission statistics
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.SuccessResponse(c, stats)
}

// RegisterRoutes registers submission routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	submissions := rg.Group("/submissions")
	{
		submissions.POST("", h.CreateSubmission)
		submissions.GET("/stats", h.GetStats)
		submissions.GET("/:id", h.GetSubmission)
	}
}
