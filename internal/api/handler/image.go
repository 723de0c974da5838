package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yusufstar/photoai/internal/api/middleware"
	"github.com/yusufstar/photoai/internal/repository"
	"github.com/yusufstar/photoai/internal/service"
)

// maxPageSize caps gallery page sizes.
const maxPageSize = 100

// paginationParam parses a pagination query value. Unparseable or negative
// values fall back to def; max of 0 means uncapped.
func paginationParam(raw string, def, max int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// ImageHandler handles generation and gallery endpoints.
type ImageHandler struct {
	generation *service.GenerationService
}

// NewImageHandler creates a new image handler.
// Parameters:
//   - generation: generation service instance.
// Returns:
//   - *ImageHandler: initialized handler.
func NewImageHandler(generation *service.GenerationService) *ImageHandler {
	return &ImageHandler{
		generation: generation,
	}
}

// Generate handles POST /api/v1/images/generate.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImageHandler) Generate(c *gin.Context) {
	var input service.GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	urls, err := h.generation.Generate(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No image generation credits left"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate image: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": urls})
}

type storeImagesRequest struct {
	Images []service.StoreImageInput `json:"images" binding:"required,min=1"`
}

// StoreImages handles POST /api/v1/images.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImageHandler) StoreImages(c *gin.Context) {
	var req storeImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	results, err := h.generation.StoreImages(c.Request.Context(), middleware.UserID(c), req.Images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store images: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// ListImages handles GET /api/v1/images.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImageHandler) ListImages(c *gin.Context) {
	limit := paginationParam(c.DefaultQuery("limit", "20"), 20, maxPageSize)
	offset := paginationParam(c.DefaultQuery("offset", "0"), 0, 0)

	page, err := h.generation.ListImages(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list images: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, page)
}
