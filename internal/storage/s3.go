// Package storage uploads user media (avatars, post images) to an
// S3-compatible bucket and hands back public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pulse/pkg/logging"
)

// S3Config holds configuration for the S3 client
type S3Config struct {
	Bucket    string // S3 bucket name
	Prefix    string // Key prefix for all operations
	Region    string // AWS region (default: us-east-1)
	Endpoint  string // Custom endpoint for S3-compatible storage (MinIO, etc.)
	PublicURL string // Base URL media is served from; defaults to the bucket endpoint
	AccessKey string // AWS access key (optional, uses IAM roles if empty)
	SecretKey string // AWS secret key (optional, uses IAM roles if empty)
}

// S3Client wraps the AWS client with bucket-scoped helpers
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	config        S3Config
	logger        logging.Logger
}

// NewS3Client creates a new S3 client with the given configuration
func NewS3Client(cfg S3Config, logger logging.Logger) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Explicit credentials if provided, otherwise the default chain (IAM roles)
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and most S3-compatible storage
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	logger.WithFields(logging.Fields{
		"bucket":   cfg.Bucket,
		"prefix":   cfg.Prefix,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
	}).Info("S3 client initialized")

	return &S3Client{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		config:        cfg,
		logger:        logger,
	}, nil
}

func (c *S3Client) fullKey(key string) string {
	if c.config.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(c.config.Prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

// Upload stores data under key and returns the public URL
func (c *S3Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	fullKey := c.fullKey(key)

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.Bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	c.logger.WithFields(logging.Fields{
		"bucket": c.config.Bucket,
		"key":    fullKey,
		"bytes":  len(data),
	}).Info("Uploaded object")

	return c.PublicURL(fullKey), nil
}

// UploadAvatar stores avatar data under a per-user key with a random
// suffix so stale CDN entries never mask a new upload.
func (c *S3Client) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), extensionFor(contentType))
	return c.Upload(ctx, key, data, contentType)
}

// UploadPostImage stores a post image under a per-user key
func (c *S3Client) UploadPostImage(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("posts/%s/%s%s", userID, uuid.New().String(), extensionFor(contentType))
	return c.Upload(ctx, key, data, contentType)
}

// PublicURL returns the externally reachable URL for a stored key
func (c *S3Client) PublicURL(fullKey string) string {
	if c.config.PublicURL != "" {
		return strings.TrimSuffix(c.config.PublicURL, "/") + "/" + fullKey
	}
	if c.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.config.Endpoint, "/"), c.config.Bucket, fullKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.config.Bucket, c.config.Region, fullKey)
}

// GeneratePresignedGET generates a time-limited download URL, used
// when the bucket is private.
func (c *S3Client) GeneratePresignedGET(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = 15 * time.Minute
	}

	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(c.fullKey(key)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned GET URL: %w", err)
	}

	return req.URL, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
