package mocks

import (
	"context"

	"doctransfer/internal/model"
	"doctransfer/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) ListFor(ctx context.Context, user model.User) ([]service.DocumentView, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentView), args.Error(1)
}

func (m *MockDocumentService) Share(ctx context.Context, user model.User, shareID string, recipients []model.Person) (*service.ShareResult, error) {
	args := m.Called(ctx, user, shareID, recipients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShareResult), args.Error(1)
}

func (m *MockDocumentService) Rename(ctx context.Context, user model.User, shareID, newName string) error {
	args := m.Called(ctx, user, shareID, newName)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, user model.User, shareID string) (bool, error) {
	args := m.Called(ctx, user, shareID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentService) DownloadLink(ctx context.Context, user model.User, shareID string) (string, error) {
	args := m.Called(ctx, user, shareID)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) UploadLink(ctx context.Context, user model.User, filename string) (*service.UploadLink, error) {
	args := m.Called(ctx, user, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadLink), args.Error(1)
}
