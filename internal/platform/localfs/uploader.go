// Package localfs stores generated images on a filesystem and serves them as
// media paths. It is the default backend for development.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/storage"
	"github.com/spf13/afero"
)

// ImageDir is the directory, relative to the storage root, holding design images.
const ImageDir = "generated_tattoos"

// Uploader writes objects beneath ImageDir of an afero filesystem.
type Uploader struct {
	fs       afero.Fs
	mediaURL string
	logger   *slog.Logger
}

var _ storage.Uploader = (*Uploader)(nil)

// NewUploader roots an OS filesystem at cfg.Root.
func NewUploader(cfg config.LocalStorageConfig, logger *slog.Logger) (*Uploader, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: local root cannot be empty", storage.ErrInvalidConfig)
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create root %s: %v", storage.ErrInvalidConfig, cfg.Root, err)
	}
	return NewUploaderWithFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Root), cfg.MediaURL, logger)
}

// NewUploaderWithFs uses fs as the storage root.
func NewUploaderWithFs(fs afero.Fs, mediaURL string, logger *slog.Logger) (*Uploader, error) {
	if fs == nil {
		return nil, fmt.Errorf("%w: filesystem cannot be nil", storage.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}

	return &Uploader{
		fs:       fs,
		mediaURL: mediaURL,
		logger:   logger.With(slog.String("component", "localfs_uploader")),
	}, nil
}

// Fs exposes the rooted filesystem so the media handler can serve it.
func (u *Uploader) Fs() afero.Fs {
	return u.fs
}

// Store writes data to ImageDir/key, truncating any previous object. The
// content type is implied by the key's extension.
func (u *Uploader) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	log := logger.FromContextOrDefault(ctx, u.logger)

	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: invalid key %q", storage.ErrStorageFailed, key)
	}

	if err := u.fs.MkdirAll(ImageDir, 0o755); err != nil {
		log.Error("failed to create image directory", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: failed to create directory: %v", storage.ErrStorageFailed, err)
	}

	objectPath := path.Join(ImageDir, key)
	if err := afero.WriteFile(u.fs, objectPath, data, 0o644); err != nil {
		log.Error("failed to write image",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: failed to write %s: %v", storage.ErrStorageFailed, key, err)
	}

	log.Debug("stored image",
		slog.String("key", key),
		slog.String("content_type", contentType),
		slog.Int("bytes", len(data)))

	return u.mediaURL + objectPath, nil
}
