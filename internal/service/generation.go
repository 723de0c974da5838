package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	// Registered decoders for dimension sniffing of provider outputs.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/yusufstar/photoai/internal/domain"
	"github.com/yusufstar/photoai/internal/logger"
	"github.com/yusufstar/photoai/internal/replicate"
	"github.com/yusufstar/photoai/internal/repository"
	"github.com/yusufstar/photoai/internal/storage"
)

// viewURLTTL bounds how long a signed gallery URL stays valid.
const viewURLTTL = time.Hour

// Runner is the provider surface needed for image generation.
type Runner interface {
	Run(ctx context.Context, model string, input replicate.GenerationInput) ([]string, error)
}

// Fetcher downloads generated output bytes from a provider URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// GenerationService runs predictions and manages the persisted gallery.
type GenerationService struct {
	images  *repository.ImageRepository
	credits CreditStore
	runner  Runner
	fetcher Fetcher
	gallery storage.ObjectStorage
}

// NewGenerationService creates a new generation service.
// Parameters:
//   - images: generated-image repository.
//   - credits: credit store for gating.
//   - runner: inference provider client.
//   - fetcher: HTTP fetcher for provider output URLs.
//   - gallery: object storage holding persisted images.
// Returns:
//   - *GenerationService: initialized service.
func NewGenerationService(
	images *repository.ImageRepository,
	credits CreditStore,
	runner Runner,
	fetcher Fetcher,
	gallery storage.ObjectStorage,
) *GenerationService {
	return &GenerationService{
		images:  images,
		credits: credits,
		runner:  runner,
		fetcher: fetcher,
		gallery: gallery,
	}
}

// GenerateInput is the user-supplied prompt configuration.
type GenerateInput struct {
	Model                string  `json:"model" binding:"required"`
	Prompt               string  `json:"prompt" binding:"required"`
	AspectRatio          string  `json:"aspect_ratio"`
	Megapixels           string  `json:"megapixels"`
	NumOutputs           int     `json:"num_outputs"`
	NumInferenceSteps    int     `json:"num_inference_steps"`
	Guidance             float64 `json:"guidance"`
	OutputFormat         string  `json:"output_format"`
	OutputQuality        int     `json:"output_quality"`
	PromptStrength       float64 `json:"prompt_strength"`
	GoFast               bool    `json:"go_fast"`
	DisableSafetyChecker bool    `json:"disable_safety_checker"`
}

// Generate runs one prediction and returns the provider's output URLs.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: authenticated user's ID.
//   - input: prompt configuration.
// Returns:
//   - []string: output image URLs.
//   - error: repository.ErrInsufficientCredits or a provider failure.
func (s *GenerationService) Generate(ctx context.Context, userID string, input GenerateInput) ([]string, error) {
	if err := s.credits.DeductImageGeneration(ctx, userID); err != nil {
		return nil, err
	}

	urls, err := s.runner.Run(ctx, input.Model, replicate.GenerationInput{
		Prompt:               input.Prompt,
		AspectRatio:          input.AspectRatio,
		Megapixels:           input.Megapixels,
		NumOutputs:           input.NumOutputs,
		NumInferenceSteps:    input.NumInferenceSteps,
		Guidance:             input.Guidance,
		OutputFormat:         input.OutputFormat,
		OutputQuality:        input.OutputQuality,
		PromptStrength:       input.PromptStrength,
		GoFast:               input.GoFast,
		DisableSafetyChecker: input.DisableSafetyChecker,
	})
	if err != nil {
		return nil, err
	}

	logger.With(logger.Fields{"outputs": len(urls)}).
		Info(ctx, "Prediction completed: model=%s", input.Model)

	return urls, nil
}

// StoreImageInput pairs a provider output URL with the parameters that
// produced it.
type StoreImageInput struct {
	URL string `json:"url" binding:"required"`
	GenerateInput
}

// StoreResult reports the outcome of persisting one image.
type StoreResult struct {
	ImageName string `json:"image_name"`
	Error     string `json:"error,omitempty"`
	Success   bool   `json:"success"`
}

// StoreImages downloads generated outputs, sniffs their dimensions, uploads
// them to the gallery bucket, and records them. Per-image failures are
// reported individually so one bad URL does not lose the batch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: authenticated user's ID.
//   - inputs: output URLs with their prompt parameters.
// Returns:
//   - []StoreResult: one result per input, in order.
//   - error: non-nil only on a total failure (never for per-image errors).
func (s *GenerationService) StoreImages(ctx context.Context, userID string, inputs []StoreImageInput) ([]StoreResult, error) {
	results := make([]StoreResult, 0, len(inputs))

	for _, in := range inputs {
		result := s.storeOne(ctx, userID, in)
		if !result.Success {
			logger.CtxWarn(ctx, "Failed to store image %s: %s", in.URL, result.Error)
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *GenerationService) storeOne(ctx context.Context, userID string, in StoreImageInput) StoreResult {
	data, err := s.fetcher.Fetch(ctx, in.URL)
	if err != nil {
		return StoreResult{Error: err.Error()}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return StoreResult{Error: fmt.Sprintf("unrecognized image data: %v", err)}
	}

	fileName := fmt.Sprintf("image_%s.%s", uuid.New().String(), format)
	key := userID + "/" + fileName

	if err := s.gallery.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "image/"+format); err != nil {
		return StoreResult{ImageName: fileName, Error: err.Error()}
	}

	img := &domain.GeneratedImage{
		ID:                   uuid.New().String(),
		UserID:               userID,
		ImageName:            fileName,
		Model:                in.Model,
		Prompt:               in.Prompt,
		AspectRatio:          in.AspectRatio,
		Megapixels:           in.Megapixels,
		NumOutputs:           in.NumOutputs,
		Guidance:             in.Guidance,
		NumInferenceSteps:    in.NumInferenceSteps,
		OutputFormat:         in.OutputFormat,
		OutputQuality:        in.OutputQuality,
		PromptStrength:       in.PromptStrength,
		DisableSafetyChecker: in.DisableSafetyChecker,
		GoFast:               in.GoFast,
		Width:                cfg.Width,
		Height:               cfg.Height,
	}
	if err := s.images.Create(ctx, img); err != nil {
		return StoreResult{ImageName: fileName, Error: err.Error()}
	}

	return StoreResult{ImageName: fileName, Success: true}
}

// GalleryImage is a gallery entry with a signed view URL.
type GalleryImage struct {
	domain.GeneratedImage
	URL string `json:"url"`
}

// GalleryPage is one page of the user's gallery.
type GalleryPage struct {
	Images []GalleryImage `json:"images"`
	Total  int64          `json:"total"`
}

// ListImages returns a page of the user's gallery with signed view URLs.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: authenticated user's ID.
//   - limit: maximum records to return.
//   - offset: records to skip.
// Returns:
//   - *GalleryPage: page of gallery entries.
//   - error: non-nil if the query or signing fails.
func (s *GenerationService) ListImages(ctx context.Context, userID string, limit, offset int) (*GalleryPage, error) {
	images, total, err := s.images.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &GalleryPage{Images: make([]GalleryImage, 0, len(images)), Total: total}
	for _, img := range images {
		url, err := s.gallery.SignedDownloadURL(ctx, img.UserID+"/"+img.ImageName, viewURLTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to sign image URL: %w", err)
		}
		page.Images = append(page.Images, GalleryImage{GeneratedImage: img, URL: url})
	}

	return page, nil
}
