package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yusufstar/photoai/internal/domain"
	"github.com/yusufstar/photoai/internal/identity"
	"github.com/yusufstar/photoai/internal/logger"
	"github.com/yusufstar/photoai/internal/service"
	"github.com/yusufstar/photoai/internal/webhook"
)

// WebhookHandler receives signed training callbacks from the provider.
type WebhookHandler struct {
	verifier   *webhook.Verifier
	reconciler *service.ReconcilerService
}

// NewWebhookHandler creates a new webhook handler.
// Parameters:
//   - verifier: signature verifier bound to the provider secret.
//   - reconciler: reconciler service instance.
// Returns:
//   - *WebhookHandler: initialized handler.
func NewWebhookHandler(verifier *webhook.Verifier, reconciler *service.ReconcilerService) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		reconciler: reconciler,
	}
}

// TrainingCallback handles POST /api/webhooks/training.
//
// The response shape is fixed: 201 {success:true} on completion,
// 401 on signature mismatch, 404 on unknown user, 400 on missing
// job-identifying parameters, and a generic 500 for everything else.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *WebhookHandler) TrainingCallback(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.CtxError(ctx, "Failed to read callback body: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	params := service.CallbackParams{
		UserID:    c.Query("userId"),
		ModelName: c.Query("modelName"),
		FileName:  c.Query("fileName"),
	}
	if params.UserID == "" || params.ModelName == "" || params.FileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameters"})
		return
	}

	err = h.verifier.Verify(
		c.GetHeader(webhook.HeaderID),
		c.GetHeader(webhook.HeaderTimestamp),
		c.GetHeader(webhook.HeaderSignature),
		body,
	)
	if err != nil {
		logger.CtxWarn(ctx, "Rejected callback with invalid signature: user_id=%s", params.UserID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var cb domain.TrainingCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		logger.CtxError(ctx, "Failed to parse callback body: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldUserID:    params.UserID,
		logger.FieldModelName: params.ModelName,
	})

	if err := h.reconciler.HandleCallback(ctx, params, &cb); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.CtxError(ctx, "Webhook processing error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}
