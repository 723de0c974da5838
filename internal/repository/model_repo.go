package repository

import (
	"context"

	"github.com/yusufstar/photoai/internal/domain"
	"gorm.io/gorm"
)

// ModelRepository handles training-job data operations.
type ModelRepository struct {
	db *gorm.DB
}

// NewModelRepository creates a new ModelRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ModelRepository: repository instance bound to db.
func NewModelRepository(db *gorm.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// Create inserts a new training-job record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: training-job record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ModelRepository) Create(ctx context.Context, job *domain.TrainingJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByUserAndName retrieves a training job by its owning user and model name.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
//   - modelName: human-readable model name.
// Returns:
//   - *domain.TrainingJob: job record if found.
//   - error: non-nil if lookup fails.
func (r *ModelRepository) GetByUserAndName(ctx context.Context, userID, modelName string) (*domain.TrainingJob, error) {
	var job domain.TrainingJob
	if err := r.db.WithContext(ctx).First(&job, "user_id = ? AND model_name = ?", userID, modelName).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByUser returns all training jobs owned by a user, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
// Returns:
//   - []domain.TrainingJob: matching job records.
//   - error: non-nil if the query fails.
func (r *ModelRepository) ListByUser(ctx context.Context, userID string) ([]domain.TrainingJob, error) {
	var jobs []domain.TrainingJob
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// StatusUpdate carries the reconciled fields for a callback delivery.
// TrainingTime and Version are only set for succeeded jobs.
type StatusUpdate struct {
	Status       domain.TrainingStatus
	TrainingTime *float64
	Version      *string
}

// ReconcileStatus conditionally applies a provider-reported status to the
// job identified by (userID, modelName). Rows that already reached a
// terminal status are never overwritten, which makes duplicate webhook
// deliveries effectively at-most-once. A missing row is a no-op.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
//   - modelName: human-readable model name.
//   - update: status and optional success metadata to apply.
// Returns:
//   - int64: number of rows updated (0 or 1).
//   - error: non-nil if the write fails.
func (r *ModelRepository) ReconcileStatus(ctx context.Context, userID, modelName string, update StatusUpdate) (int64, error) {
	fields := map[string]interface{}{
		"training_status": update.Status,
	}
	if update.TrainingTime != nil {
		fields["training_time"] = *update.TrainingTime
	}
	if update.Version != nil {
		fields["version"] = *update.Version
	}

	tx := r.db.WithContext(ctx).
		Model(&domain.TrainingJob{}).
		Where("user_id = ? AND model_name = ?", userID, modelName).
		Where("training_status NOT IN ?", domain.TerminalStatuses()).
		Updates(fields)

	return tx.RowsAffected, tx.Error
}

// Delete removes a training job owned by a user.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
//   - modelName: human-readable model name.
// Returns:
//   - error: non-nil if the delete fails.
func (r *ModelRepository) Delete(ctx context.Context, userID, modelName string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND model_name = ?", userID, modelName).Delete(&domain.TrainingJob{}).Error
}
