package domain

import "time"

// UserCredits tracks per-user generation and training allowances.
type UserCredits struct {
	ID                   string    `gorm:"type:text;primaryKey" json:"id"`
	UserID               string    `gorm:"type:text;not null;uniqueIndex:idx_credits_user" json:"user_id"`
	ImageGenerationCount int       `gorm:"default:0" json:"image_generation_count"`
	ModelTrainingCount   int       `gorm:"default:0" json:"model_training_count"`
	MaxImageGenerations  int       `gorm:"default:0" json:"max_image_generations"`
	MaxModelTrainings    int       `gorm:"default:0" json:"max_model_trainings"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserCredits.
func (UserCredits) TableName() string {
	return "credits"
}

// RemainingImageGenerations returns how many generations the user has left.
func (c *UserCredits) RemainingImageGenerations() int {
	if n := c.MaxImageGenerations - c.ImageGenerationCount; n > 0 {
		return n
	}
	return 0
}

// RemainingModelTrainings returns how many trainings the user has left.
func (c *UserCredits) RemainingModelTrainings() int {
	if n := c.MaxModelTrainings - c.ModelTrainingCount; n > 0 {
		return n
	}
	return 0
}
