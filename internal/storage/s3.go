package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/evolvesprouts/backend/internal/config"
	"github.com/evolvesprouts/backend/internal/models"
)

const (
	// DefaultUploadTTL is the presigned PUT lifetime when none is configured.
	DefaultUploadTTL = 15 * time.Minute

	minUploadTTL = time.Minute
	maxUploadTTL = time.Hour
)

// S3Store issues presigned uploads and deletes objects in the assets bucket.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
	bucket    string
	uploadTTL time.Duration
	now       func() time.Time
}

// New configures the S3 clients targeting the assets bucket. A custom
// endpoint switches the client to path-style addressing for local stacks.
func New(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithClient(client, cfg.Bucket, cfg.UploadTTL), nil
}

// NewWithClient wires an S3Store around an existing client (used by tests).
func NewWithClient(client *s3.Client, bucket string, uploadTTL time.Duration) *S3Store {
	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = 5 * 1024 * 1024
			u.LeavePartsOnError = false
		}),
		bucket:    bucket,
		uploadTTL: clampUploadTTL(uploadTTL),
		now:       time.Now,
	}
}

// PresignUpload mints a time-bounded PUT URL for the key, along with the
// headers the uploader must send. Each call produces a fresh URL.
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string) (models.UploadTicket, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return models.UploadTicket{}, fmt.Errorf("s3 storage: empty key")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	headers := map[string]string{}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
		headers["Content-Type"] = contentType
	}

	presigned, err := s.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return models.UploadTicket{}, fmt.Errorf("presign upload %s: %w", key, err)
	}

	return models.UploadTicket{
		URL:       presigned.URL,
		Method:    presigned.Method,
		Headers:   headers,
		ExpiresAt: s.now().UTC().Add(s.uploadTTL),
	}, nil
}

// DeleteObject removes the backing object for a deleted asset.
func (s *S3Store) DeleteObject(ctx context.Context, key string) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return fmt.Errorf("s3 storage: empty key")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Upload stores content directly under the key. Used by the seed command;
// request-path uploads always go through presigned PUTs instead.
func (s *S3Store) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return fmt.Errorf("s3 storage: empty key")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(r),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func clampUploadTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return DefaultUploadTTL
	}
	if ttl < minUploadTTL {
		return minUploadTTL
	}
	if ttl > maxUploadTTL {
		return maxUploadTTL
	}
	return ttl
}
