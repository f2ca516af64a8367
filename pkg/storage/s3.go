package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/abogida/abogida-api/pkg/config"
)

// S3Storage stores media objects in an S3-compatible bucket and presigns
// read URLs through the SDK.
type S3Storage struct {
	client *s3.S3
	bucket string
}

// NewS3Storage builds an S3 client from configuration.
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	awsCfg := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Region:           aws.String(cfg.S3Region),
		DisableSSL:       aws.Bool(!cfg.S3UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}

	return &S3Storage{client: s3.New(sess), bucket: cfg.Bucket}, nil
}

// Upload writes the object unless one already exists at the same path.
func (s *S3Storage) Upload(ctx context.Context, path string, r io.Reader, contentType string) error {
	if _, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}); err == nil {
		return fmt.Errorf("object already exists at %s", path)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   aws.ReadSeekCloser(r),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

// List returns object keys under the given prefix.
func (s *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	err := s.client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
	}
	return keys, nil
}

// SignedURL presigns a GET for the object with the provided TTL.
func (s *S3Storage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	return url, nil
}
