package domain

import "time"

// GeneratedImage represents a persisted gallery entry along with the
// prompt parameters that produced it.
type GeneratedImage struct {
	ID                   string    `gorm:"type:text;primaryKey" json:"id"`
	UserID               string    `gorm:"type:text;not null;index:idx_images_user" json:"user_id"`
	ImageName            string    `gorm:"type:text;not null" json:"image_name"`
	Model                string    `gorm:"type:text" json:"model"`
	Prompt               string    `gorm:"type:text" json:"prompt"`
	AspectRatio          string    `gorm:"type:text" json:"aspect_ratio"`
	Megapixels           string    `gorm:"type:text" json:"megapixels"`
	NumOutputs           int       `json:"num_outputs"`
	Guidance             float64   `json:"guidance"`
	NumInferenceSteps    int       `json:"num_inference_steps"`
	OutputFormat         string    `gorm:"type:text" json:"output_format"`
	OutputQuality        int       `json:"output_quality"`
	PromptStrength       float64   `json:"prompt_strength"`
	DisableSafetyChecker bool      `json:"disable_safety_checker"`
	GoFast               bool      `json:"go_fast"`
	Width                int       `json:"width"`
	Height               int       `json:"height"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TableName returns the database table name for GeneratedImage.
func (GeneratedImage) TableName() string {
	return "generated_images"
}
