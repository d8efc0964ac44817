package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/lensline/internal/config"
	"github.com/Veraticus/lensline/internal/service"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore keeps payloads as objects in an S3-compatible bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ service.BlobStore = (*MinIOStore)(nil)

// NewMinIOStore connects and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig) (*MinIOStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIOStore{
		client: cli,
		bucket: cfg.Bucket,
		prefix: "s3://" + cfg.Bucket + "/",
	}, nil
}

// Put uploads data and returns its s3://bucket/key reference.
func (m *MinIOStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := objectName(name, contentType)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}
	return m.prefix + key, nil
}

// Owns reports whether ref names an object in this store's bucket.
func (m *MinIOStore) Owns(ref string) bool {
	key, ok := strings.CutPrefix(ref, m.prefix)
	return ok && key != "" && !strings.Contains(key, "/")
}

// Release removes the object behind ref.
func (m *MinIOStore) Release(ctx context.Context, ref string) error {
	if !m.Owns(ref) {
		return fmt.Errorf("blob %q is not owned by bucket %s", ref, m.bucket)
	}
	key := strings.TrimPrefix(ref, m.prefix)
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}
