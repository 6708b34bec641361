// Package generation defines the contract for turning a composed text prompt
// into raster image bytes. Concrete backends (Hugging Face inference, OpenAI
// images, Gemini Imagen) live under internal/platform and are chosen at
// startup from configuration.
//
// Every backend failure wraps ErrGenerationFailed so callers branch on a
// single error kind; the message keeps the finer cause for diagnostics.
package generation
