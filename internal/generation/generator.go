package generation

import (
	"context"
)

// Image is the raw result of a successful generation.
type Image struct {
	// Data holds the encoded image bytes as returned by the provider.
	Data []byte

	// ContentType is the MIME type reported by, or assumed for, the provider.
	ContentType string

	// Model identifies the model that produced the image.
	Model string
}

// Generator defines the interface for text-to-image services.
type Generator interface {
	// Generate sends prompt to the provider exactly once and returns the image.
	// Any failure wraps ErrGenerationFailed.
	Generate(ctx context.Context, prompt string) (*Image, error)

	// Model returns the model identifier used for persisted records, including
	// failed ones.
	Model() string
}
