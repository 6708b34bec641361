// Package s3 stores generated images in an S3-compatible bucket such as
// Cloudflare R2.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/storage"
)

// objectPutter is the subset of *s3.Client used by Uploader.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes objects with PutObject and builds public references.
type Uploader struct {
	client   objectPutter
	bucket   string
	endpoint string
	domain   string
	logger   *slog.Logger
}

var _ storage.Uploader = (*Uploader)(nil)

// R2Endpoint returns the S3 API endpoint of a Cloudflare account.
func R2Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewUploader builds an S3 client with static credentials and a custom
// endpoint. optFns are applied after the defaults.
func NewUploader(cfg config.S3StorageConfig, logger *slog.Logger, optFns ...func(*s3.Options)) (*Uploader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket cannot be empty", storage.ErrInvalidConfig)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: access key and secret are required", storage.ErrInvalidConfig)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		if cfg.AccountID == "" {
			return nil, fmt.Errorf("%w: endpoint or account id is required", storage.ErrInvalidConfig)
		}
		endpoint = R2Endpoint(cfg.AccountID)
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	))

	opts := s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       region,
		Credentials:  creds,
		UsePathStyle: true,

		// R2 rejects the flexible checksum headers the SDK sends by default
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Uploader{
		client:   s3.New(opts),
		bucket:   cfg.Bucket,
		endpoint: endpoint,
		domain:   strings.TrimSuffix(cfg.MediaDomain, "/"),
		logger:   logger.With(slog.String("component", "s3_uploader")),
	}, nil
}

// Store uploads data under key. Existing objects are replaced.
func (u *Uploader) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	log := logger.FromContextOrDefault(ctx, u.logger)

	if key == "" {
		return "", fmt.Errorf("%w: key cannot be empty", storage.ErrStorageFailed)
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error("failed to upload object",
			slog.String("bucket", u.bucket),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: failed to upload %s: %v", storage.ErrStorageFailed, key, err)
	}

	log.Debug("uploaded object",
		slog.String("bucket", u.bucket),
		slog.String("key", key),
		slog.Int("bytes", len(data)))

	return u.reference(key), nil
}

func (u *Uploader) reference(key string) string {
	if u.domain != "" {
		if strings.HasPrefix(u.domain, "http://") || strings.HasPrefix(u.domain, "https://") {
			return u.domain + "/" + key
		}
		return "https://" + u.domain + "/" + key
	}
	return u.endpoint + "/" + u.bucket + "/" + key
}
