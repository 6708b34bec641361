// Package storage defines the contract for persisting generated images and
// the key scheme designs use. Backends live in internal/platform/localfs and
// internal/platform/s3.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrStorageFailed wraps every upload failure regardless of backend.
var ErrStorageFailed = errors.New("image storage failed")

// ErrInvalidConfig is returned when a backend cannot be constructed.
var ErrInvalidConfig = errors.New("invalid storage configuration")

// Uploader writes objects and returns a reference clients can resolve.
type Uploader interface {
	// Store writes data under key, replacing any existing object, and returns
	// the storage reference (a public URL or media path).
	// Failures wrap ErrStorageFailed.
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// DesignImageKey returns the object key for a design's image. The key depends
// only on the design ID, so re-running a job overwrites rather than duplicates.
func DesignImageKey(designID uuid.UUID) string {
	return designID.String() + ".png"
}
