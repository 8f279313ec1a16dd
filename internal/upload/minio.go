package upload

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig describes an S3-compatible bucket used as image host.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string // defaults to <scheme>://<endpoint>/<bucket>
}

// MinIO uploads photos to a public-read bucket.
type MinIO struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIO connects to the bucket, creating it when missing.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIO{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
	}, nil
}

func (m *MinIO) Name() string { return "minio" }

// Upload stores the file under photos/<uuid><ext> and returns its public URL.
func (m *MinIO) Upload(ctx context.Context, f File) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", &Error{File: f.Name, Err: fmt.Errorf("open: %w", err)}
	}
	defer func() {
		_ = body.Close()
	}()

	key := ObjectKey(f.Name)
	size := f.Size
	if size <= 0 {
		size = -1
	}

	_, err = m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: f.ContentType,
	})
	if err != nil {
		return "", &Error{File: f.Name, Err: fmt.Errorf("put object: %w", err)}
	}

	return m.baseURL + "/" + key, nil
}

// Ping checks the bucket is still reachable.
func (m *MinIO) Ping(ctx context.Context) error {
	ok, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("bucket disappeared")
	}
	return nil
}

// ObjectKey returns a fresh object key that keeps the file extension.
func ObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return "photos/" + uuid.NewString() + ext
}
