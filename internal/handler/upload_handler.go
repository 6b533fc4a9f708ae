package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"templora/internal/domain"
	"templora/internal/port"
	"templora/internal/service"
)

// UploadHandler handles the upload coordinator endpoints. On the chunked path
// it only mediates between the client and the object store's multipart API;
// file bytes bypass it entirely.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

type multipartInitRequest struct {
	Kind             string     `json:"kind" binding:"required"`
	CategoryID       uuid.UUID  `json:"category_id"`
	SubcategoryID    *uuid.UUID `json:"subcategory_id"`
	SubSubcategoryID *uuid.UUID `json:"sub_subcategory_id"`
	Slug             string     `json:"slug"`
	TemplateName     string     `json:"template_name"`
	Filename         string     `json:"filename" binding:"required"`
	ContentType      string     `json:"content_type"`
	FileSize         int64      `json:"file_size" binding:"required,gt=0"`
}

type multipartCompleteRequest struct {
	UploadID string               `json:"uploadId" binding:"required"`
	Key      string               `json:"key" binding:"required"`
	Bucket   string               `json:"bucket" binding:"required"`
	Kind     string               `json:"kind"`
	Parts    []port.CompletedPart `json:"parts" binding:"required,min=1"`
}

type multipartAbortRequest struct {
	UploadID string `json:"uploadId" binding:"required"`
	Key      string `json:"key" binding:"required"`
	Bucket   string `json:"bucket" binding:"required"`
}

// InitMultipart handles POST /api/v1/uploads/multipart/init
func (h *UploadHandler) InitMultipart(c *gin.Context) {
	if _, err := GetAuthenticatedUser(c); err != nil {
		return
	}

	var req multipartInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	out, err := h.uploadService.InitMultipart(c.Request.Context(), service.MultipartInitInput{
		Kind:             domain.UploadKind(req.Kind),
		CategoryID:       req.CategoryID,
		SubcategoryID:    req.SubcategoryID,
		SubSubcategoryID: req.SubSubcategoryID,
		Slug:             req.Slug,
		TemplateName:     req.TemplateName,
		Filename:         req.Filename,
		ContentType:      req.ContentType,
		FileSize:         req.FileSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// CompleteMultipart handles POST /api/v1/uploads/multipart/complete
func (h *UploadHandler) CompleteMultipart(c *gin.Context) {
	if _, err := GetAuthenticatedUser(c); err != nil {
		return
	}

	var req multipartCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	out, err := h.uploadService.CompleteMultipart(c.Request.Context(), service.MultipartCompleteInput{
		UploadID: req.UploadID,
		Key:      req.Key,
		Bucket:   req.Bucket,
		Kind:     domain.UploadKind(req.Kind),
		Parts:    req.Parts,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// AbortMultipart handles DELETE /api/v1/uploads/multipart/abort.
// Abort is best-effort and idempotent: the response is 200 regardless of
// whether the store still had the session.
func (h *UploadHandler) AbortMultipart(c *gin.Context) {
	if _, err := GetAuthenticatedUser(c); err != nil {
		return
	}

	var req multipartAbortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	h.uploadService.AbortMultipart(c.Request.Context(), req.UploadID, req.Key, req.Bucket)
	RespondOK(c, gin.H{"aborted": true})
}

// SimpleUpload handles POST /api/v1/uploads/simple, the single-request path
// for files under the chunked threshold.
func (h *UploadHandler) SimpleUpload(c *gin.Context) {
	if _, err := GetAuthenticatedUser(c); err != nil {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if err != nil {
		HandleError(c, domain.ErrMissingCategory)
		return
	}

	input := service.SimpleUploadInput{
		Kind:         domain.UploadKind(c.PostForm("kind")),
		CategoryID:   categoryID,
		Slug:         c.PostForm("slug"),
		TemplateName: c.PostForm("template_name"),
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		FileSize:     header.Size,
		Body:         file,
	}
	if raw := c.PostForm("subcategory_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			input.SubcategoryID = &id
		}
	}
	if raw := c.PostForm("sub_subcategory_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			input.SubSubcategoryID = &id
		}
	}

	out, err := h.uploadService.SimpleUpload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, out)
}
