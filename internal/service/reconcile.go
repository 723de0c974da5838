package service

import (
	"context"
	"fmt"

	"github.com/yusufstar/photoai/internal/domain"
	"github.com/yusufstar/photoai/internal/identity"
	"github.com/yusufstar/photoai/internal/logger"
	"github.com/yusufstar/photoai/internal/mailer"
	"github.com/yusufstar/photoai/internal/repository"
)

// ModelStore is the persistence surface the reconciler needs.
type ModelStore interface {
	ReconcileStatus(ctx context.Context, userID, modelName string, update repository.StatusUpdate) (int64, error)
}

// IdentityResolver resolves an opaque user ID to a deliverable identity.
type IdentityResolver interface {
	GetUserByID(ctx context.Context, id string) (*identity.User, error)
}

// EmailSender delivers one transactional email.
type EmailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// ArtifactDeleter removes a temporary training archive from storage.
type ArtifactDeleter interface {
	Delete(ctx context.Context, key string) error
}

// CallbackParams are the job-identifying query parameters carried on the
// webhook URL.
type CallbackParams struct {
	UserID    string
	ModelName string
	FileName  string
}

// ReconcilerService applies provider training callbacks to persistent
// state: it resolves the owning user, reconciles the job status, notifies
// the user, and cleans up the uploaded training archive.
type ReconcilerService struct {
	models    ModelStore
	identity  IdentityResolver
	mail      EmailSender
	artifacts ArtifactDeleter
}

// NewReconcilerService creates a new reconciler service.
// Parameters:
//   - models: training-job store.
//   - resolver: identity resolver for the owning user.
//   - mail: transactional email sender.
//   - artifacts: training-archive storage (deletion only).
// Returns:
//   - *ReconcilerService: initialized service.
func NewReconcilerService(
	models ModelStore,
	resolver IdentityResolver,
	mail EmailSender,
	artifacts ArtifactDeleter,
) *ReconcilerService {
	return &ReconcilerService{
		models:    models,
		identity:  resolver,
		mail:      mail,
		artifacts: artifacts,
	}
}

// HandleCallback reconciles one verified callback delivery. The status is
// written before the notification is sent, so a mail provider outage never
// loses a status transition; the archive cleanup runs last and its failure
// is logged but never surfaced.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - params: job-identifying query parameters.
//   - cb: parsed callback body.
// Returns:
//   - error: identity.ErrUserNotFound for unknown users, or the first
//     reconcile/notify failure.
func (s *ReconcilerService) HandleCallback(ctx context.Context, params CallbackParams, cb *domain.TrainingCallback) error {
	user, err := s.identity.GetUserByID(ctx, params.UserID)
	if err != nil {
		return err
	}

	update := repository.StatusUpdate{Status: cb.Status}
	if cb.Status == domain.TrainingStatusSucceeded {
		if cb.Metrics != nil {
			update.TrainingTime = cb.Metrics.TotalTime
		}
		if cb.Output != nil {
			update.Version = domain.ParseOutputVersion(cb.Output.Version)
		}
	}

	rows, err := s.models.ReconcileStatus(ctx, params.UserID, params.ModelName, update)
	if err != nil {
		return fmt.Errorf("failed to reconcile training status: %w", err)
	}
	if rows == 0 {
		// Missing row or already-terminal status; duplicate deliveries land here.
		logger.CtxWarn(ctx, "Training status not applied: user_id=%s, model_name=%s, status=%s",
			params.UserID, params.ModelName, cb.Status)
	} else {
		logger.With(logger.Fields{logger.FieldStatus: string(cb.Status)}).
			Info(ctx, "Training status reconciled: model_name=%s", params.ModelName)
	}

	var msg mailer.Message
	if cb.Status == domain.TrainingStatusSucceeded {
		msg = mailer.TrainingSucceeded(user.Email, user.DisplayName, params.ModelName)
	} else {
		msg = mailer.TrainingStatusChanged(user.Email, user.DisplayName, params.ModelName, string(cb.Status))
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send training notification: %w", err)
	}

	s.cleanupArtifact(ctx, params)

	return nil
}

// cleanupArtifact deletes the temporary training archive. Failures are
// logged and swallowed so cleanup can never fail the callback.
func (s *ReconcilerService) cleanupArtifact(ctx context.Context, params CallbackParams) {
	if params.FileName == "" {
		return
	}

	key := params.FileName
	if err := s.artifacts.Delete(ctx, key); err != nil {
		logger.CtxError(ctx, "Failed to delete training archive %s: %v", key, err)
		return
	}
	logger.CtxInfo(ctx, "Deleted training archive %s", key)
}
