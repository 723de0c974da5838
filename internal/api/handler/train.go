package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yusufstar/photoai/internal/api/middleware"
	"github.com/yusufstar/photoai/internal/repository"
	"github.com/yusufstar/photoai/internal/service"
)

// TrainHandler handles training kickoff and archive uploads.
type TrainHandler struct {
	training *service.TrainingService
}

// NewTrainHandler creates a new train handler.
// Parameters:
//   - training: training service instance.
// Returns:
//   - *TrainHandler: initialized handler.
func NewTrainHandler(training *service.TrainingService) *TrainHandler {
	return &TrainHandler{
		training: training,
	}
}

// StartTraining handles POST /api/v1/train.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *TrainHandler) StartTraining(c *gin.Context) {
	var input service.StartTrainingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	job, err := h.training.StartTraining(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		case errors.Is(err, repository.ErrInsufficientCredits):
			c.JSON(http.StatusForbidden, gin.H{"error": "No model training credits left"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start training: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "model": job})
}

type signUploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
}

// SignUpload handles POST /api/v1/uploads/url.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *TrainHandler) SignUpload(c *gin.Context) {
	var req signUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	signedURL, key, err := h.training.SignUpload(c.Request.Context(), middleware.UserID(c), req.FileName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign upload URL: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signedUrl": signedURL, "fileKey": key})
}
