package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with expiration. A missing key is reported as the zero value, not an error.
type Cache interface {
	Get(ctx context.Context, key string) Response[string]
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) Response[string]
	Del(ctx context.Context, keys ...string) Response[int64]
}

type Response[T any] interface {
	Err() error
	Result() (T, error)
}
