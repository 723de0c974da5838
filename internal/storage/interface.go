package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the interface for object storage operations.
// An instance is scoped to a single bucket.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL for accessing an object
	GetURL(key string) string

	// SignedUploadURL returns a presigned PUT URL for uploading an object
	SignedUploadURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// SignedDownloadURL returns a presigned GET URL for reading an object
	SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
