package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jonathan/resume-matcher/internal/logging"
)

// MinIOConfig holds the connection settings for a MinIO or S3-compatible endpoint.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// MaxObjectBytes caps downloads; zero uses DefaultMaxObjectBytes.
	MaxObjectBytes int64
}

// MinIO stores résumé files in one bucket.
type MinIO struct {
	client   *minio.Client
	bucket   string
	maxBytes int64
}

// NewMinIO creates the client and makes sure the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logging.Info().Str("bucket", cfg.Bucket).Msg("created object storage bucket")
	}

	maxBytes := cfg.MaxObjectBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxObjectBytes
	}
	return &MinIO{client: client, bucket: cfg.Bucket, maxBytes: maxBytes}, nil
}

// Get downloads the object under key. Objects larger than the configured cap are rejected.
func (m *MinIO) Get(ctx context.Context, key string) (*Object, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.wrap(key, err)
	}
	defer func() { _ = obj.Close() }()

	info, err := obj.Stat()
	if err != nil {
		return nil, m.wrap(key, err)
	}
	if info.Size > m.maxBytes {
		return nil, fmt.Errorf("object %s/%s is %d bytes, limit is %d", m.bucket, key, info.Size, m.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(obj, m.maxBytes))
	if err != nil {
		return nil, m.wrap(key, err)
	}
	return &Object{Key: key, ContentType: info.ContentType, Data: data}, nil
}

// Put uploads r under key.
func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", m.bucket, key, err)
	}
	return nil
}

func (m *MinIO) wrap(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s/%s: %w", m.bucket, key, ErrNotFound)
	}
	return fmt.Errorf("failed to get object %s/%s: %w", m.bucket, key, err)
}
