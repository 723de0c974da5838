package repository

import (
	"context"
	"errors"

	"github.com/yusufstar/photoai/internal/domain"
	"gorm.io/gorm"
)

// ErrInsufficientCredits is returned when a deduction would exceed the
// user's allowance.
var ErrInsufficientCredits = errors.New("insufficient credits")

// CreditRepository handles user credit operations.
type CreditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new CreditRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CreditRepository: repository instance bound to db.
func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// GetByUserID retrieves the credit row for a user.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
// Returns:
//   - *domain.UserCredits: credit record if found.
//   - error: non-nil if lookup fails.
func (r *CreditRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserCredits, error) {
	var credits domain.UserCredits
	if err := r.db.WithContext(ctx).First(&credits, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &credits, nil
}

// Create inserts a new credit row.
func (r *CreditRepository) Create(ctx context.Context, credits *domain.UserCredits) error {
	return r.db.WithContext(ctx).Create(credits).Error
}

// DeductImageGeneration consumes one image-generation credit. The increment
// is conditional on the ceiling so concurrent requests cannot overspend.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
// Returns:
//   - error: ErrInsufficientCredits when the allowance is exhausted.
func (r *CreditRepository) DeductImageGeneration(ctx context.Context, userID string) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.UserCredits{}).
		Where("user_id = ? AND image_generation_count < max_image_generations", userID).
		Update("image_generation_count", gorm.Expr("image_generation_count + 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// DeductModelTraining consumes one model-training credit.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
// Returns:
//   - error: ErrInsufficientCredits when the allowance is exhausted.
func (r *CreditRepository) DeductModelTraining(ctx context.Context, userID string) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.UserCredits{}).
		Where("user_id = ? AND model_training_count < max_model_trainings", userID).
		Update("model_training_count", gorm.Expr("model_training_count + 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}
