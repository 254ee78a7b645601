// Package imagestore uploads profile pictures to an S3-compatible object
// store and hands back the opaque public URL stored against the user row.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/araufdev/business-management/internal"
)

const keyPrefix = "user-profiles"

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

func NewS3Store(ctx context.Context, cfg internal.StorageConfig, logger *slog.Logger) (*S3Store, error) {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// static credentials, used with MinIO or explicit AWS keys
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		logger:    logger,
	}, nil
}

// UploadProfilePicture stores the image under a generated key and returns its
// public URL. The original filename only contributes its extension when the
// content type is missing.
func (s *S3Store) UploadProfilePicture(ctx context.Context, filename, contentType string, content io.Reader) (string, error) {
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		if byExt := extensionContentType(filename); byExt != "" {
			contentType = byExt
			ext = allowedContentTypes[byExt]
		} else {
			return "", fmt.Errorf("unsupported image content type %q", contentType)
		}
	}

	key := path.Join(keyPrefix, uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("failed to upload profile picture", "key", key, "error", err)
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	s.logger.Info("profile picture uploaded", "key", key, "content_type", contentType)
	return url, nil
}

func extensionContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return ""
}
