// Package service stores media files in a gocloud.dev bucket before they are registered
// with the backend.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob" // Azure Blob Storage driver
	_ "gocloud.dev/blob/fileblob"  // Local filesystem driver
	_ "gocloud.dev/blob/gcsblob"   // Google Cloud Storage driver
	_ "gocloud.dev/blob/memblob"   // In-memory driver for tests and development
	_ "gocloud.dev/blob/s3blob"    // AWS S3 driver

	"github.com/allisson/rewardsync/internal/errors"
)

// ErrMediaFileMissing indicates the local file of an upload no longer exists.
var ErrMediaFileMissing = errors.Wrap(errors.ErrInvalidInput, "media file missing")

// Storage writes upload files to an object bucket.
type Storage struct {
	bucket *blob.Bucket
}

// OpenStorage opens the bucket at bucketURL (e.g., "mem://", "file:///var/media", "s3://bucket?region=us-east-1").
func OpenStorage(ctx context.Context, bucketURL string) (*Storage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return &Storage{bucket: bucket}, nil
}

// NewStorage wraps an already opened bucket.
func NewStorage(bucket *blob.Bucket) *Storage {
	return &Storage{bucket: bucket}
}

// ObjectKey returns the deterministic key of an upload so a retried attempt overwrites
// nothing and uploads nothing twice.
func ObjectKey(ownerUserID, mutationID, localPath string) string {
	return fmt.Sprintf("uploads/%s/%s%s", ownerUserID, mutationID, filepath.Ext(localPath))
}

// Upload streams localPath to key. An object already stored under key is left as is.
func (s *Storage) Upload(ctx context.Context, key, localPath, contentType string) error {
	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	if exists {
		return nil
	}

	file, err := os.Open(localPath) //nolint:gosec // path comes from the user's own queued upload
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrMediaFileMissing, localPath)
		}
		return fmt.Errorf("failed to open media file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}

	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	return nil
}

// Exists reports whether key is stored.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, key)
}

// Close releases the bucket.
func (s *Storage) Close() error {
	return s.bucket.Close()
}
