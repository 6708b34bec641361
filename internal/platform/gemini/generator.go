package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/generation"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "imagen-3.0-generate-002"

// imageModels is the subset of *genai.Models used by Generator.
type imageModels interface {
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// Generator implements generation.Generator using the Gemini API backend.
type Generator struct {
	models imageModels
	model  string
	logger *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini API client and wraps it in a Generator.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIToken,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return newGenerator(client.Models, model, logger), nil
}

func newGenerator(models imageModels, model string, logger *slog.Logger) *Generator {
	return &Generator{
		models: models,
		model:  model,
		logger: logger.With(slog.String("component", "gemini_generator")),
	}
}

// Model returns the configured Imagen model.
func (g *Generator) Model() string {
	return g.model
}

// Generate requests one image for prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (*generation.Image, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	resp, err := g.models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		IncludeRAIReason: true,
		OutputMIMEType:   "image/png",
	})
	if err != nil {
		log.Error("gemini image request failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0] == nil {
		return nil, fmt.Errorf("%w: no images in response", generation.ErrGenerationFailed)
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			log.Warn("prompt filtered by provider",
				slog.String("model", g.model),
				slog.String("reason", generated.RAIFilteredReason))
			return nil, fmt.Errorf("%w: %s", generation.ErrContentRejected, generated.RAIFilteredReason)
		}
		return nil, fmt.Errorf("%w: empty image data", generation.ErrGenerationFailed)
	}

	contentType := generated.Image.MIMEType
	if contentType == "" {
		contentType = "image/png"
	}

	return &generation.Image{
		Data:        generated.Image.ImageBytes,
		ContentType: contentType,
		Model:       g.model,
	}, nil
}
