package mocks

import (
	"context"
	"io"

	"doctransfer/internal/model"
	"doctransfer/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuditLog struct {
	mock.Mock
}

var _ service.AuditLog = (*MockAuditLog)(nil)

func (m *MockAuditLog) Append(ctx context.Context, actor model.Person, shareID, storageKey, displayName, action string) error {
	args := m.Called(ctx, actor, shareID, storageKey, displayName, action)
	return args.Error(0)
}

func (m *MockAuditLog) ListAll(ctx context.Context, user model.User) ([]model.AuditEntry, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}

func (m *MockAuditLog) Export(ctx context.Context, user model.User, w io.Writer) error {
	args := m.Called(ctx, user, w)
	if f, ok := args.Get(0).(func(io.Writer) error); ok {
		return f(w)
	}
	return args.Error(0)
}
