package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"templora/internal/domain"
	"templora/internal/middleware"
	"templora/internal/service"
)

// AssetHandler handles marketplace asset endpoints.
type AssetHandler struct {
	assetService service.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

type assetCreateRequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents" binding:"gte=0"`
	Currency    string    `json:"currency"`
}

type assetFilesRequest struct {
	PreviewURL   string `json:"preview_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	SourceKey    string `json:"source_key"`
	SourceSize   int64  `json:"source_size"`
}

// Create handles POST /api/v1/assets
func (h *AssetHandler) Create(c *gin.Context) {
	userID, err := GetAuthenticatedUser(c)
	if err != nil {
		return
	}

	var req assetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	asset, err := h.assetService.Create(c.Request.Context(), service.AssetCreateInput{
		SellerID:    userID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, asset)
}

// GetByID handles GET /api/v1/assets/:id
func (h *AssetHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset id")
		return
	}

	asset, err := h.assetService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, asset)
}

// List handles GET /api/v1/assets (published assets, optional category filter)
func (h *AssetHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid category id")
			return
		}
		categoryID = &id
	}

	assets, total, err := h.assetService.ListPublished(c.Request.Context(), categoryID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, assets, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListMine handles GET /api/v1/assets/mine
func (h *AssetHandler) ListMine(c *gin.Context) {
	userID, err := GetAuthenticatedUser(c)
	if err != nil {
		return
	}

	offset, limit := pagination(c)
	assets, total, err := h.assetService.ListBySeller(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, assets, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// AttachFiles handles PUT /api/v1/assets/:id/files
func (h *AssetHandler) AttachFiles(c *gin.Context) {
	userID, err := GetAuthenticatedUser(c)
	if err != nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset id")
		return
	}

	var req assetFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	asset, err := h.assetService.AttachFiles(c.Request.Context(), userID, id, service.AssetFilesInput{
		PreviewURL:   req.PreviewURL,
		ThumbnailURL: req.ThumbnailURL,
		SourceKey:    req.SourceKey,
		SourceSize:   req.SourceSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, asset)
}

// Publish handles POST /api/v1/assets/:id/publish
func (h *AssetHandler) Publish(c *gin.Context) {
	userID, err := GetAuthenticatedUser(c)
	if err != nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset id")
		return
	}

	asset, err := h.assetService.Publish(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, asset)
}

// Download handles GET /api/v1/assets/:id/download
func (h *AssetHandler) Download(c *gin.Context) {
	if _, err := GetAuthenticatedUser(c); err != nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset id")
		return
	}

	url, err := h.assetService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/assets/:id
func (h *AssetHandler) Delete(c *gin.Context) {
	userID, err := GetAuthenticatedUser(c)
	if err != nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset id")
		return
	}

	role := domain.UserRole(middleware.GetRole(c))
	if err := h.assetService.Delete(c.Request.Context(), userID, id, role); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": true})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
