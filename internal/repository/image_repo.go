package repository

import (
	"context"

	"github.com/yusufstar/photoai/internal/domain"
	"gorm.io/gorm"
)

// ImageRepository handles generated-image data operations.
type ImageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ImageRepository: repository instance bound to db.
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create inserts a new generated-image record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - img: image record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ImageRepository) Create(ctx context.Context, img *domain.GeneratedImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

// GetByID retrieves a generated image by ID, scoped to its owner.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
//   - id: image record ID.
// Returns:
//   - *domain.GeneratedImage: image record if found.
//   - error: non-nil if lookup fails.
func (r *ImageRepository) GetByID(ctx context.Context, userID, id string) (*domain.GeneratedImage, error) {
	var img domain.GeneratedImage
	if err := r.db.WithContext(ctx).First(&img, "user_id = ? AND id = ?", userID, id).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// ListByUser returns a page of the user's gallery, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user's ID.
//   - limit: maximum records to return.
//   - offset: records to skip.
// Returns:
//   - []domain.GeneratedImage: matching image records.
//   - int64: total number of records for the user.
//   - error: non-nil if the query fails.
func (r *ImageRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.GeneratedImage, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.GeneratedImage{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var images []domain.GeneratedImage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&images).Error; err != nil {
		return nil, 0, err
	}

	return images, total, nil
}
