// internal/app/system/media/media.go

// Package media talks to the external media host. The application
// never manipulates image bytes: uploads are forwarded as-is and the
// host answers with a stable URL plus the key needed to delete the
// object later.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Object identifies a stored image: the public URL persisted on the
// entity and the key used for deletion.
type Object struct {
	Key string
	URL string
}

// Store is the media-host surface the workflows depend on.
// Upload failures are fatal for required images; Delete is always
// best-effort at the call sites.
type Store interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (Object, error)
	Delete(ctx context.Context, key string) error
}

// MinioStore stores objects in an S3-compatible bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *zap.Logger
}

// Config holds the media host connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioStore connects to the media host and makes sure the bucket
// exists.
func NewMinioStore(ctx context.Context, cfg Config, log *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media host client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("media host bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("media host bucket create: %w", err)
		}
		log.Info("created media bucket", zap.String("bucket", cfg.Bucket))
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
		log:     log,
	}, nil
}

// Upload stores the bytes under a fresh key inside folder and returns
// the object reference.
func (s *MinioStore) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (Object, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := folder + "/" + uuid.NewString() + ext

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return Object{}, fmt.Errorf("media upload %s: %w", key, err)
	}

	s.log.Info("media uploaded", zap.String("key", key), zap.Int64("size", size))
	return Object{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes the object for key.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("media delete %s: %w", key, err)
	}
	return nil
}
