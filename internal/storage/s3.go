package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/config"
)

// S3Backend stores uploads in an S3-compatible bucket and serves them from
// a public base URL (the bucket's website endpoint or a CDN in front of it).
type S3Backend struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewS3Backend creates an S3 upload backend from configuration.
func NewS3Backend(ctx context.Context, cfg config.S3UploadsConfig, logger zerolog.Logger) (*S3Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("configured S3 upload backend")

	return &S3Backend{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        logger.With().Str("component", "s3_uploads").Logger(),
	}, nil
}

// Store uploads the file under a random key preserving the extension.
func (b *S3Backend) Store(ctx context.Context, reader io.Reader, filename, contentType string) (string, error) {
	key := "uploads/" + uuid.NewString() + safeExt(filename)

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		b.logger.Error().Err(err).Str("key", key).Msg("failed to upload to S3")
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	url := b.publicBaseURL + "/" + key
	b.logger.Debug().Str("key", key).Msg("stored upload")
	return url, nil
}

// Ensure S3Backend implements Backend.
var _ Backend = (*S3Backend)(nil)
