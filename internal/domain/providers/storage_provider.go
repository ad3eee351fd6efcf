package providers

import (
	"context"
	"io"
	"time"
)

// UploadProgress reports incremental transfer progress for an upload
type UploadProgress struct {
	TransferredBytes int64
	TotalBytes       int64
}

// UploadProgressFunc receives progress callbacks during an upload
type UploadProgressFunc func(progress UploadProgress)

// StorageProvider defines path-scoped object-storage operations.
// Paths are namespaced by purpose: "profile-pictures/<identity>/..." and
// "business-images/<business-id>/...".
type StorageProvider interface {
	// Upload stores an object at the given path, reporting progress if a callback is set
	Upload(ctx context.Context, path string, data io.Reader, size int64, onProgress UploadProgressFunc) error

	// Download retrieves an object
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes an object
	Delete(ctx context.Context, path string) error

	// GetURL returns a time-limited URL for an object
	GetURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}
