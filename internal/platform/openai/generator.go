// Package openai implements generation.Generator with the OpenAI images API.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/generation"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = goopenai.CreateImageModelDallE3

// imageCreator is the subset of *goopenai.Client used by Generator.
type imageCreator interface {
	CreateImage(ctx context.Context, request goopenai.ImageRequest) (goopenai.ImageResponse, error)
}

// Generator requests a single base64-encoded PNG per prompt.
type Generator struct {
	client imageCreator
	model  string
	logger *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator from the generation configuration.
func NewGenerator(cfg config.GenerationConfig, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: api token cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIToken)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return newGenerator(goopenai.NewClientWithConfig(clientConfig), model, logger), nil
}

func newGenerator(client imageCreator, model string, logger *slog.Logger) *Generator {
	return &Generator{
		client: client,
		model:  model,
		logger: logger.With(slog.String("component", "openai_generator")),
	}
}

// Model returns the configured image model.
func (g *Generator) Model() string {
	return g.model
}

// Generate creates one 1024x1024 image and decodes the base64 payload.
func (g *Generator) Generate(ctx context.Context, prompt string) (*generation.Image, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	res, err := g.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           goopenai.CreateImageSize1024x1024,
		ResponseFormat: goopenai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		// A 400 invalid_request_error is how the images API reports a safety refusal
		apiError := &goopenai.APIError{}
		if errors.As(err, &apiError) && apiError.HTTPStatusCode == http.StatusBadRequest &&
			apiError.Type == "invalid_request_error" {
			log.Warn("prompt rejected by provider", slog.String("model", g.model))
			return nil, fmt.Errorf("%w: %s", generation.ErrContentRejected, apiError.Message)
		}
		log.Error("image request failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if len(res.Data) == 0 || res.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: empty response payload", generation.ErrGenerationFailed)
	}

	data, err := base64.StdEncoding.DecodeString(res.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload: %v", generation.ErrGenerationFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", generation.ErrGenerationFailed)
	}

	return &generation.Image{
		Data:        data,
		ContentType: "image/png",
		Model:       g.model,
	}, nil
}
