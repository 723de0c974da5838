package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPFetcher downloads provider output bytes over HTTP.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher with a bounded timeout.
func NewHTTPFetcher() *HTTPFetcher {
	client := resty.New()
	client.SetTimeout(60 * time.Second)
	return &HTTPFetcher{client: client}
}

// Fetch downloads the body at url.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - url: provider output URL.
// Returns:
//   - []byte: response body.
//   - error: non-nil on transport failure or non-200 status.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}
