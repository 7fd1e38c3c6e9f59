package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"grocery-backend/internal/config"
	"grocery-backend/pkg/logger"
)

// UploadResult describes a stored asset. PublicID is the object key and
// is what callers hand back to Delete. The URL always contains a
// `v<version>` path segment so size-variant URLs can be derived from it.
type UploadResult struct {
	URL      string
	PublicID string
	Version  int64
	Bytes    int64
	Format   string
}

// AssetStore is the remote asset host. The MinIO implementation below
// is the production one; tests use in-memory fakes.
type AssetStore interface {
	Upload(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

type minioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (AssetStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created storage bucket", map[string]interface{}{"bucket": cfg.Bucket})
	}

	return &minioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
	}, nil
}

// Upload stores the object under folder/v<unix>/name. The version
// segment makes every upload addressable by a distinct URL even when
// a product replaces its image with the same file name.
func (s *minioStore) Upload(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	version := time.Now().Unix()
	key := fmt.Sprintf("%s/v%d/%s", folder, version, name)

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &UploadResult{
		URL:      s.publicURL + "/" + key,
		PublicID: key,
		Version:  version,
		Bytes:    info.Size,
		Format:   formatFromContentType(contentType),
	}, nil
}

func (s *minioStore) Delete(ctx context.Context, publicID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}

func formatFromContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "application/gzip":
		return "gz"
	default:
		return "bin"
	}
}
