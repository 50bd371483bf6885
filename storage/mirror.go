package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Mirror keeps an offsite copy of placed originals in MinIO/S3. It is an
// optional, best-effort safety net: the local disk stays the source of truth
// and pipeline outcomes never depend on it.
type Mirror struct {
	client *minio.Client
	bucket string
}

// NewMirrorFromEnv initialises the mirror using MINIO_* environment
// variables. Returns (nil, nil) when unconfigured.
func NewMirrorFromEnv() (*Mirror, error) {
	endpoint := strings.TrimSpace(os.Getenv("MINIO_ENDPOINT"))
	accessKey := strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY"))
	secretKey := strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY"))
	bucket := strings.TrimSpace(os.Getenv("MINIO_BUCKET"))
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, nil
	}

	useSSL := strings.EqualFold(strings.TrimSpace(os.Getenv("MINIO_USE_SSL")), "true")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check mirror bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create mirror bucket: %w", err)
		}
	}

	return &Mirror{client: client, bucket: bucket}, nil
}

// Upload copies a local file to the mirror under the given object name.
func (m *Mirror) Upload(ctx context.Context, localPath, objectName, contentType string) error {
	if m == nil || m.client == nil {
		return nil
	}

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", localPath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("storage: stat %s: %w", localPath, err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = m.client.PutObject(uploadCtx, m.bucket, objectName, file, stat.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("storage: mirror %s: %w", objectName, err)
	}
	return nil
}

// Remove deletes a mirrored object.
func (m *Mirror) Remove(ctx context.Context, objectName string) error {
	if m == nil || m.client == nil {
		return nil
	}

	removeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return m.client.RemoveObject(removeCtx, m.bucket, objectName, minio.RemoveObjectOptions{})
}
