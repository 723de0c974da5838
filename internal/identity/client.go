package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUserNotFound is returned when the auth provider has no user for the
// given ID (or the ID is empty).
var ErrUserNotFound = errors.New("user not found")

// User is the resolved identity of a callback's owning user.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Config holds configuration for the identity client.
type Config struct {
	// BaseURL is the auth provider's project URL, e.g. "https://xyz.supabase.co".
	BaseURL string
	// ServiceRoleKey authorizes admin-level user lookups.
	ServiceRoleKey string
}

// Client performs privileged user lookups against the hosted auth provider's
// admin API.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient creates a new identity client.
// Parameters:
//   - cfg: identity configuration including base URL and service role key.
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("apikey", cfg.ServiceRoleKey)
	client.SetHeader("Authorization", "Bearer "+cfg.ServiceRoleKey)
	client.SetTimeout(10 * time.Second)

	return &Client{
		client:  client,
		baseURL: cfg.BaseURL,
	}
}

// adminUserResponse mirrors the auth provider's admin user payload.
type adminUserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

// GetUserByID resolves a user's email and display name by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: opaque user identifier from the callback URL.
// Returns:
//   - *User: resolved identity.
//   - error: ErrUserNotFound for empty or unknown IDs, or a transport error.
func (c *Client) GetUserByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}

	var body adminUserResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		// fall through
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("identity lookup failed: status %d", resp.StatusCode())
	}

	if body.ID == "" {
		return nil, ErrUserNotFound
	}

	return &User{
		ID:          body.ID,
		Email:       body.Email,
		DisplayName: body.UserMetadata.FullName,
	}, nil
}
