package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yusufstar/photoai/internal/api/middleware"
	"github.com/yusufstar/photoai/internal/service"
)

// ModelHandler exposes the user's trained models.
type ModelHandler struct {
	training *service.TrainingService
}

// NewModelHandler creates a new model handler.
// Parameters:
//   - training: training service instance.
// Returns:
//   - *ModelHandler: initialized handler.
func NewModelHandler(training *service.TrainingService) *ModelHandler {
	return &ModelHandler{
		training: training,
	}
}

// ListModels handles GET /api/v1/models.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ModelHandler) ListModels(c *gin.Context) {
	models, err := h.training.ListModels(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list models: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"models": models})
}

// GetModel handles GET /api/v1/models/:name.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ModelHandler) GetModel(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Model name is required"})
		return
	}

	model, err := h.training.GetModel(c.Request.Context(), middleware.UserID(c), name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	}

	c.JSON(http.StatusOK, model)
}
