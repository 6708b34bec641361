package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when image generation fails for any reason:
	// non-success status, transport error, empty payload or rejected content.
	ErrGenerationFailed = errors.New("image generation failed")

	// ErrContentRejected is returned when the provider refuses the prompt
	// through its safety filters.
	ErrContentRejected = fmt.Errorf("%w: content rejected by provider", ErrGenerationFailed)

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
