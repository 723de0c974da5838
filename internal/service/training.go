package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yusufstar/photoai/internal/config"
	"github.com/yusufstar/photoai/internal/domain"
	"github.com/yusufstar/photoai/internal/logger"
	"github.com/yusufstar/photoai/internal/replicate"
	"github.com/yusufstar/photoai/internal/repository"
	"github.com/yusufstar/photoai/internal/storage"
)

// ErrMissingFields is returned when a training request lacks required input.
var ErrMissingFields = errors.New("missing required fields")

// Trainer is the provider surface needed to start a fine-tune.
type Trainer interface {
	CreateModel(ctx context.Context, owner, name, hardware string) error
	CreateTraining(ctx context.Context, req replicate.TrainingRequest) (*replicate.Training, error)
}

// CreditStore gates paid operations.
type CreditStore interface {
	DeductModelTraining(ctx context.Context, userID string) error
	DeductImageGeneration(ctx context.Context, userID string) error
}

// TrainingService starts fine-tunes and exposes the user's model list.
type TrainingService struct {
	models       *repository.ModelRepository
	credits      CreditStore
	trainer      Trainer
	trainingData storage.ObjectStorage
	replicateCfg config.ReplicateConfig
	trainingCfg  config.TrainingConfig
	siteURL      string
}

// NewTrainingService creates a new training service.
// Parameters:
//   - models: training-job repository.
//   - credits: credit store for gating.
//   - trainer: inference provider client.
//   - trainingData: object storage holding uploaded archives.
//   - replicateCfg: provider coordinates (owner, trainer version, hardware).
//   - trainingCfg: fixed training parameters.
//   - siteURL: public base URL used to build the webhook callback.
// Returns:
//   - *TrainingService: initialized service.
func NewTrainingService(
	models *repository.ModelRepository,
	credits CreditStore,
	trainer Trainer,
	trainingData storage.ObjectStorage,
	replicateCfg config.ReplicateConfig,
	trainingCfg config.TrainingConfig,
	siteURL string,
) *TrainingService {
	return &TrainingService{
		models:       models,
		credits:      credits,
		trainer:      trainer,
		trainingData: trainingData,
		replicateCfg: replicateCfg,
		trainingCfg:  trainingCfg,
		siteURL:      siteURL,
	}
}

// StartTrainingInput is the user-supplied training request.
type StartTrainingInput struct {
	// FileKey is the storage key of the uploaded archive, optionally
	// prefixed with the bucket name as older clients send it.
	FileKey   string `json:"fileKey"`
	ModelName string `json:"modelName"`
	Gender    string `json:"gender"`
}

// StartTraining kicks off a fine-tune: it deducts a credit, hands the
// provider a signed URL for the uploaded archive, creates the destination
// model and the training, and records the job.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: authenticated user's ID.
//   - input: training request fields.
// Returns:
//   - *domain.TrainingJob: persisted job record.
//   - error: ErrMissingFields, repository.ErrInsufficientCredits, or a
//     provider/storage failure.
func (s *TrainingService) StartTraining(ctx context.Context, userID string, input StartTrainingInput) (*domain.TrainingJob, error) {
	if input.FileKey == "" || input.ModelName == "" || input.Gender == "" {
		return nil, ErrMissingFields
	}

	if err := s.credits.DeductModelTraining(ctx, userID); err != nil {
		return nil, err
	}

	fileName := strings.TrimPrefix(input.FileKey, "training_data/")

	signedURL, err := s.trainingData.SignedDownloadURL(ctx, fileName, s.trainingCfg.SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign training archive URL: %w", err)
	}

	modelID := fmt.Sprintf("%s_%d_%s", userID, time.Now().UnixMilli(), slugify(input.ModelName))

	if err := s.trainer.CreateModel(ctx, s.replicateCfg.Owner, modelID, s.replicateCfg.Hardware); err != nil {
		return nil, err
	}

	training, err := s.trainer.CreateTraining(ctx, replicate.TrainingRequest{
		TrainerOwner:   s.replicateCfg.TrainerOwner,
		TrainerName:    s.replicateCfg.TrainerName,
		TrainerVersion: s.replicateCfg.TrainerVersion,
		Destination:    s.replicateCfg.Owner + "/" + modelID,
		Input: replicate.TrainingInput{
			Steps:       s.trainingCfg.Steps,
			Resolution:  s.trainingCfg.Resolution,
			InputImages: signedURL,
			TriggerWord: s.trainingCfg.TriggerWord,
		},
		Webhook:             s.webhookURL(userID, input.ModelName, fileName),
		WebhookEventsFilter: []string{"completed"},
	})
	if err != nil {
		return nil, err
	}

	job := &domain.TrainingJob{
		ID:             uuid.New().String(),
		UserID:         userID,
		ModelName:      input.ModelName,
		ModelID:        modelID,
		Gender:         input.Gender,
		TriggerWord:    s.trainingCfg.TriggerWord,
		TrainingSteps:  s.trainingCfg.Steps,
		TrainingID:     training.ID,
		TrainingStatus: domain.TrainingStatus(training.Status),
	}
	if err := s.models.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record training job: %w", err)
	}

	logger.With(logger.Fields{logger.FieldTrainingID: training.ID}).
		Info(ctx, "Training started: model_name=%s, destination=%s", input.ModelName, job.ModelID)

	return job, nil
}

// webhookURL builds the provider callback URL carrying the identity of the
// job so the reconciler can find its record.
func (s *TrainingService) webhookURL(userID, modelName, fileName string) string {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("modelName", modelName)
	q.Set("fileName", fileName)
	return strings.TrimSuffix(s.siteURL, "/") + "/api/webhooks/training?" + q.Encode()
}

// SignUpload issues a presigned upload URL for a new training archive.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: authenticated user's ID.
//   - fileName: client-supplied archive file name.
// Returns:
//   - string: presigned PUT URL.
//   - string: storage key the archive will live under.
//   - error: non-nil if signing fails.
func (s *TrainingService) SignUpload(ctx context.Context, userID, fileName string) (string, string, error) {
	if fileName == "" {
		return "", "", ErrMissingFields
	}

	key := fmt.Sprintf("%s/%d_%s", userID, time.Now().UnixMilli(), fileName)
	signedURL, err := s.trainingData.SignedUploadURL(ctx, key, s.trainingCfg.SignedURLTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign upload URL: %w", err)
	}

	return signedURL, key, nil
}

// ListModels returns the user's training jobs, newest first.
func (s *TrainingService) ListModels(ctx context.Context, userID string) ([]domain.TrainingJob, error) {
	return s.models.ListByUser(ctx, userID)
}

// GetModel returns one of the user's training jobs by name.
func (s *TrainingService) GetModel(ctx context.Context, userID, modelName string) (*domain.TrainingJob, error) {
	return s.models.GetByUserAndName(ctx, userID, modelName)
}

// slugify lowercases a model name and replaces spaces so it is usable as a
// provider model slug.
func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
