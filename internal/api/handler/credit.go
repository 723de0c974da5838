package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yusufstar/photoai/internal/api/middleware"
	"github.com/yusufstar/photoai/internal/repository"
)

// CreditHandler exposes the user's credit balance.
type CreditHandler struct {
	credits *repository.CreditRepository
}

// NewCreditHandler creates a new credit handler.
// Parameters:
//   - credits: credit repository instance.
// Returns:
//   - *CreditHandler: initialized handler.
func NewCreditHandler(credits *repository.CreditRepository) *CreditHandler {
	return &CreditHandler{
		credits: credits,
	}
}

// GetCredits handles GET /api/v1/credits.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *CreditHandler) GetCredits(c *gin.Context) {
	credits, err := h.credits.GetByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Credits not found"})
		return
	}

	c.JSON(http.StatusOK, credits)
}
