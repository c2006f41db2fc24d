package mocks

import (
	"context"
	"time"

	"doctransfer/internal/cache"

	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

var _ cache.Cache = (*MockCache)(nil)

func (m *MockCache) Get(ctx context.Context, key string) cache.Response[string] {
	args := m.Called(ctx, key)
	return args.Get(0).(cache.Response[string])
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) cache.Response[string] {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(cache.Response[string])
}

func (m *MockCache) Del(ctx context.Context, keys ...string) cache.Response[int64] {
	args := m.Called(ctx, keys)
	return args.Get(0).(cache.Response[int64])
}

// Response is a fixed cache.Response.
type Response[T any] struct {
	Val   T
	Error error
}

func (r Response[T]) Err() error {
	return r.Error
}

func (r Response[T]) Result() (T, error) {
	return r.Val, r.Error
}
