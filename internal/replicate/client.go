package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds configuration for the inference provider client.
type Config struct {
	APIToken string
	BaseURL  string
}

// Client talks to a Replicate-style inference and training API.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient creates a new provider client.
// Parameters:
//   - cfg: provider configuration including API token.
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIToken)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(120 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
	}
}

type apiError struct {
	Detail string `json:"detail"`
}

// CreateModel creates a private destination model for a fine-tune.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - owner: account that will own the destination model.
//   - name: destination model slug.
//   - hardware: hardware SKU to train on.
// Returns:
//   - error: non-nil if the provider rejects the creation.
func (c *Client) CreateModel(ctx context.Context, owner, name, hardware string) error {
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"owner":      owner,
			"name":       name,
			"visibility": "private",
			"hardware":   hardware,
		}).
		SetError(&apiErr).
		Post(c.baseURL + "/models")
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to create model: status %d: %s", resp.StatusCode(), apiErr.Detail)
	}

	return nil
}

// TrainingInput is the trainer-specific input payload.
type TrainingInput struct {
	Steps       int    `json:"steps"`
	Resolution  string `json:"resolution"`
	InputImages string `json:"input_images"`
	TriggerWord string `json:"trigger_word"`
}

// TrainingRequest describes a fine-tune to start.
type TrainingRequest struct {
	// Trainer coordinates: owner/name at a pinned version.
	TrainerOwner   string
	TrainerName    string
	TrainerVersion string

	// Destination is the "owner/name" slug of the model created beforehand.
	Destination string

	Input TrainingInput

	// Webhook is invoked by the provider on job completion.
	Webhook             string
	WebhookEventsFilter []string
}

// Training is the provider's view of a training job.
type Training struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Error  *string `json:"error,omitempty"`
}

type createTrainingBody struct {
	Destination         string        `json:"destination"`
	Input               TrainingInput `json:"input"`
	Webhook             string        `json:"webhook,omitempty"`
	WebhookEventsFilter []string      `json:"webhook_events_filter,omitempty"`
}

// CreateTraining starts a fine-tune on the provider.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: training request including destination and webhook.
// Returns:
//   - *Training: created training with provider-issued ID and status.
//   - error: non-nil if the provider rejects the request.
func (c *Client) CreateTraining(ctx context.Context, req TrainingRequest) (*Training, error) {
	var training Training
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(createTrainingBody{
			Destination:         req.Destination,
			Input:               req.Input,
			Webhook:             req.Webhook,
			WebhookEventsFilter: req.WebhookEventsFilter,
		}).
		SetResult(&training).
		SetError(&apiErr).
		Post(fmt.Sprintf("%s/models/%s/%s/versions/%s/trainings",
			c.baseURL, req.TrainerOwner, req.TrainerName, req.TrainerVersion))
	if err != nil {
		return nil, fmt.Errorf("failed to create training: %w", err)
	}

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to create training: status %d: %s", resp.StatusCode(), apiErr.Detail)
	}

	return &training, nil
}

// Prediction is the provider's view of an inference run.
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  *string         `json:"error,omitempty"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// GenerationInput is the prompt payload for image generation.
type GenerationInput struct {
	Prompt               string  `json:"prompt"`
	AspectRatio          string  `json:"aspect_ratio,omitempty"`
	Megapixels           string  `json:"megapixels,omitempty"`
	NumOutputs           int     `json:"num_outputs,omitempty"`
	NumInferenceSteps    int     `json:"num_inference_steps,omitempty"`
	Guidance             float64 `json:"guidance,omitempty"`
	OutputFormat         string  `json:"output_format,omitempty"`
	OutputQuality        int     `json:"output_quality,omitempty"`
	PromptStrength       float64 `json:"prompt_strength,omitempty"`
	GoFast               bool    `json:"go_fast,omitempty"`
	DisableSafetyChecker bool    `json:"disable_safety_checker,omitempty"`
}

// Run executes a model synchronously and returns its output URLs. The model
// reference is either "owner/name" (latest version) or "owner/name:version".
// Parameters:
//   - ctx: context for cancellation and deadlines; bounds polling.
//   - model: model reference to run.
//   - input: generation parameters.
// Returns:
//   - []string: output image URLs.
//   - error: non-nil if the prediction fails or is canceled.
func (c *Client) Run(ctx context.Context, model string, input GenerationInput) ([]string, error) {
	var prediction Prediction
	var apiErr apiError

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "wait").
		SetResult(&prediction).
		SetError(&apiErr)

	var resp *resty.Response
	var err error
	if _, version, ok := splitVersion(model); ok {
		resp, err = req.
			SetBody(map[string]interface{}{"version": version, "input": input}).
			Post(c.baseURL + "/predictions")
	} else {
		resp, err = req.
			SetBody(map[string]interface{}{"input": input}).
			Post(fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to run prediction: %w", err)
	}

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to run prediction: status %d: %s", resp.StatusCode(), apiErr.Detail)
	}

	final, err := c.waitForPrediction(ctx, &prediction)
	if err != nil {
		return nil, err
	}

	return outputURLs(final.Output)
}

// waitForPrediction polls the prediction until it reaches a terminal status.
func (c *Client) waitForPrediction(ctx context.Context, p *Prediction) (*Prediction, error) {
	for {
		switch p.Status {
		case "succeeded":
			return p, nil
		case "failed", "canceled":
			msg := p.Status
			if p.Error != nil {
				msg = *p.Error
			}
			return nil, fmt.Errorf("prediction %s: %s", p.ID, msg)
		}

		if p.URLs.Get == "" {
			return nil, errors.New("prediction has no polling URL")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}

		var next Prediction
		resp, err := c.client.R().
			SetContext(ctx).
			SetResult(&next).
			Get(p.URLs.Get)
		if err != nil {
			return nil, fmt.Errorf("failed to poll prediction: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("failed to poll prediction: status %d", resp.StatusCode())
		}
		p = &next
	}
}

// splitVersion splits "owner/name:version" references.
func splitVersion(model string) (name, version string, ok bool) {
	idx := strings.Index(model, ":")
	if idx == -1 {
		return model, "", false
	}
	return model[:idx], model[idx+1:], true
}

// outputURLs normalizes the provider output, which is either a single URL
// string or a list of URL strings depending on the model.
func outputURLs(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	return nil, errors.New("unrecognized prediction output shape")
}
