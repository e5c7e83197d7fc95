// Package storage provides a domain-agnostic adapter for S3-compatible
// object storage. Application documents and workflow-generated documents
// live in separate buckets.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"admissions_portal_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Service wraps a MinIO client with the operations the workflow needs.
type Service struct {
	client      *minio.Client
	maxFileSize int64
}

// New creates the storage service from MinIO configuration.
func New(cfg config.MinIOConfig) (*Service, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Service{
		client:      client,
		maxFileSize: cfg.GetMinIOMaxFileSize(),
	}, nil
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (s *Service) EnsureBucketExists(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return nil
}

// PresignUpload creates a presigned PUT URL for the given key.
func (s *Service) PresignUpload(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	presigned, err := s.client.PresignedPutObject(ctx, bucket, fileKey, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", fileKey, err)
	}
	return presigned.String(), nil
}

// PresignDownload creates a presigned GET URL for the given key.
func (s *Service) PresignDownload(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, bucket, fileKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", fileKey, err)
	}
	return presigned.String(), nil
}

// Upload stores an object directly from a reader.
func (s *Service) Upload(ctx context.Context, bucket, fileKey, contentType string, reader io.Reader, size int64) error {
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return fmt.Errorf("file %s exceeds size limit of %d bytes", fileKey, s.maxFileSize)
	}

	_, err := s.client.PutObject(ctx, bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", fileKey, err)
	}
	return nil
}

// Delete removes an object.
func (s *Service) Delete(ctx context.Context, bucket, fileKey string) error {
	if err := s.client.RemoveObject(ctx, bucket, fileKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", fileKey, err)
	}
	return nil
}
