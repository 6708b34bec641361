// Package huggingface implements generation.Generator against the Hugging Face
// serverless inference API. The endpoint answers a JSON prompt with the raw
// image bytes.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/generation"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Client calls a text-to-image model hosted on Hugging Face.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiToken   string
	model      string
	logger     *slog.Logger
}

var _ generation.Generator = (*Client)(nil)

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// NewClient creates a Client from the generation configuration. The model
// identifier defaults to the final path segment of the endpoint.
func NewClient(cfg config.GenerationConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: api token cannot be empty", generation.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = ModelFromEndpoint(cfg.Endpoint)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		endpoint: cfg.Endpoint,
		apiToken: cfg.APIToken,
		model:    model,
		logger:   logger.With(slog.String("component", "huggingface_client")),
	}, nil
}

// ModelFromEndpoint returns the last path segment of an inference URL,
// e.g. "FLUX.1-schnell".
func ModelFromEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Path == "" || u.Path == "/" {
		return endpoint
	}
	return path.Base(u.Path)
}

// Model returns the model identifier recorded on designs.
func (c *Client) Model() string {
	return c.model
}

// Generate posts the prompt once. Only a 200 with a non-empty body counts as
// success; the body is the image.
func (c *Client) Generate(ctx context.Context, prompt string) (*generation.Image, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	body, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", generation.ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", generation.ErrGenerationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("inference request failed",
			slog.String("model", c.model),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: failed to send request: %v", generation.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error("inference returned non-success status",
			slog.String("model", c.model),
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s",
			generation.ErrGenerationFailed, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", generation.ErrGenerationFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response body", generation.ErrGenerationFailed)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	log.Debug("inference succeeded",
		slog.String("model", c.model),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(start)))

	return &generation.Image{
		Data:        data,
		ContentType: contentType,
		Model:       c.model,
	}, nil
}
