package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dreamportal/internal/errors"
	"dreamportal/internal/storage"
)

// AssetHandler accepts image uploads (item photos and portal backgrounds)
// as base64 data URIs and returns the public URL to store on the entity.
type AssetHandler struct {
	store *storage.Store
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(store *storage.Store) *AssetHandler {
	return &AssetHandler{store: store}
}

// UploadRequest represents an image upload payload
type UploadRequest struct {
	Category string `json:"category" binding:"required,oneof=items backgrounds"`
	Data     string `json:"data" binding:"required"`
}

// UploadResponse carries the stored asset's public URL.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload stores an uploaded image
// @Summary     Upload image
// @Description Store a base64 data URI image and get its public URL
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UploadRequest true "Image data"
// @Success     201 {object} UploadResponse "Stored asset URL"
// @Failure     400 {object} ErrorResponse "Malformed or unsupported image"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     413 {object} ErrorResponse "Image too large"
// @Failure     507 {object} ErrorResponse "Storage full"
// @Router      /portal/assets [post]
func (h *AssetHandler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	url, err := h.store.Upload(userID, req.Category, req.Data)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, UploadResponse{URL: url})
}

// Delete removes a previously uploaded image
// @Summary     Delete image
// @Description Remove an uploaded asset by its public URL
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DeleteAssetRequest true "Asset URL"
// @Success     204 "Asset removed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/assets [delete]
func (h *AssetHandler) Delete(c *gin.Context) {
	var req DeleteAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.store.Delete(userID, req.URL); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAssetRequest identifies an asset by its public URL.
type DeleteAssetRequest struct {
	URL string `json:"url" binding:"required"`
}
