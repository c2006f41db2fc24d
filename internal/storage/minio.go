package storage

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"doctransfer/internal/config"
)

// MinIOStore implements ObjectStore and Notifier on an S3-compatible backend (MinIO, AWS S3, etc.).
// It is safe for concurrent use by multiple goroutines.
type MinIOStore struct {
	client         *minio.Client
	bucket         string
	downloadExpiry time.Duration
	uploadExpiry   time.Duration
}

var (
	_ ObjectStore = (*MinIOStore)(nil)
	_ Notifier    = (*MinIOStore)(nil)
)

// NewMinIO creates a new storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &MinIOStore{
		client:         cli,
		bucket:         cfg.Bucket,
		downloadExpiry: seconds(cfg.PresignExpirySec, time.Hour),
		uploadExpiry:   seconds(cfg.UploadExpirySec, 15*time.Minute),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

func seconds(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

// Copy performs a server-side copy within the bucket.
func (m *MinIOStore) Copy(ctx context.Context, src, dst string) error {
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: m.bucket, Object: src},
	)
	return err
}

// Delete removes an object by key.
func (m *MinIOStore) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// Size stats the object.
func (m *MinIOStore) Size(ctx context.Context, key string) (int64, error) {
	st, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, err
	}
	return st.Size, nil
}

// PresignDownload generates a pre-signed GET URL that downloads as an attachment.
func (m *MinIOStore) PresignDownload(ctx context.Context, key, filename string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", ContentDisposition(filename))
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.downloadExpiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// PresignUpload generates a pre-signed PUT URL and returns it with its validity.
func (m *MinIOStore) PresignUpload(ctx context.Context, key string) (string, time.Duration, error) {
	u, err := m.client.PresignedPutObject(ctx, m.bucket, key, m.uploadExpiry)
	if err != nil {
		return "", 0, err
	}
	return u.String(), m.uploadExpiry, nil
}

// Listen subscribes to object-created notifications of the bucket.
// The returned channel is closed when ctx is done.
func (m *MinIOStore) Listen(ctx context.Context, prefix string) <-chan Notification {
	out := make(chan Notification)
	go func() {
		defer close(out)
		for info := range m.client.ListenBucketNotification(ctx, m.bucket, prefix, "", []string{"s3:ObjectCreated:*"}) {
			n := Notification{Err: info.Err}
			for _, rec := range info.Records {
				key, err := url.QueryUnescape(rec.S3.Object.Key)
				if err != nil {
					key = rec.S3.Object.Key
				}
				n.Objects = append(n.Objects, ObjectCreated{
					Bucket: rec.S3.Bucket.Name,
					Key:    key,
					Size:   rec.S3.Object.Size,
				})
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// ContentDisposition builds an attachment header value carrying filename.
func ContentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
