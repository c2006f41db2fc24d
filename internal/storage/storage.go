package storage

import (
	"context"
	"time"
)

// Package storage contains the object store abstraction used by the document lifecycle.
// Objects are never read through the service; clients download and upload through presigned URLs.

// ObjectStore is the S3-compatible capability the services depend on.
type ObjectStore interface {
	// Copy duplicates src into dst inside the bucket.
	Copy(ctx context.Context, src, dst string) error
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Size returns the stored size of an object in bytes.
	Size(ctx context.Context, key string) (int64, error)
	// PresignDownload returns a time-limited GET URL that forces an attachment download named filename.
	PresignDownload(ctx context.Context, key, filename string) (string, error)
	// PresignUpload returns a time-limited PUT URL for the given key.
	PresignUpload(ctx context.Context, key string) (string, time.Duration, error)
}

// ObjectCreated describes an upload-completion notification.
type ObjectCreated struct {
	Bucket string
	Key    string
	Size   int64
}

// Notifier streams object-created notifications for keys under prefix until ctx is done.
type Notifier interface {
	Listen(ctx context.Context, prefix string) <-chan Notification
}

// Notification is one batch of events or a listener error.
type Notification struct {
	Objects []ObjectCreated
	Err     error
}
