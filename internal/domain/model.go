package domain

import (
	"strings"
	"time"
)

// TrainingStatus represents the lifecycle status of a training job as
// reported by the external provider. Non-terminal provider statuses are
// stored verbatim, so the constant set below is not exhaustive.
type TrainingStatus string

const (
	TrainingStatusStarting   TrainingStatus = "starting"
	TrainingStatusProcessing TrainingStatus = "processing"
	TrainingStatusSucceeded  TrainingStatus = "succeeded"
	TrainingStatusFailed     TrainingStatus = "failed"
	TrainingStatusCanceled   TrainingStatus = "canceled"
)

// IsTerminal reports whether no further status transitions can occur.
func (s TrainingStatus) IsTerminal() bool {
	switch s {
	case TrainingStatusSucceeded, TrainingStatusFailed, TrainingStatusCanceled:
		return true
	}
	return false
}

// TerminalStatuses lists every status after which a job record is frozen.
func TerminalStatuses() []TrainingStatus {
	return []TrainingStatus{
		TrainingStatusSucceeded,
		TrainingStatusFailed,
		TrainingStatusCanceled,
	}
}

// TrainingJob represents a personalized model fine-tune owned by a user.
// Exactly one record exists per (user_id, model_name) pair.
type TrainingJob struct {
	ID             string         `gorm:"type:text;primaryKey" json:"id"`
	UserID         string         `gorm:"type:text;not null;index:idx_models_owner,unique" json:"user_id"`
	ModelName      string         `gorm:"type:text;not null;index:idx_models_owner,unique" json:"model_name"`
	ModelID        string         `gorm:"type:text;not null" json:"model_id"`
	Gender         string         `gorm:"type:text" json:"gender"`
	TriggerWord    string         `gorm:"type:text" json:"trigger_word"`
	TrainingSteps  int            `gorm:"default:0" json:"training_steps"`
	TrainingID     string         `gorm:"type:text;index:idx_models_training_id" json:"training_id"`
	TrainingStatus TrainingStatus `gorm:"type:text;index:idx_models_status" json:"training_status"`
	TrainingTime   *float64       `json:"training_time,omitempty"`
	Version        *string        `gorm:"type:text" json:"version,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName returns the database table name for TrainingJob.
func (TrainingJob) TableName() string {
	return "models"
}

// ParseOutputVersion extracts the version tag from a provider output
// reference of the form "owner/model:version". It returns nil when the
// reference carries no version segment.
func ParseOutputVersion(ref string) *string {
	parts := strings.SplitN(ref, ":", 2)
	if len(parts) < 2 || parts[1] == "" {
		return nil
	}
	return &parts[1]
}
