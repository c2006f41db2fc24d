package mocks

import (
	"context"

	"doctransfer/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) documents(args mock.Arguments) ([]model.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) document(args mock.Arguments) (*model.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, owner string) ([]model.Document, error) {
	return m.documents(m.Called(ctx, owner))
}

func (m *MockDocumentRepository) ListSharedWith(ctx context.Context, identityKey string) ([]model.Document, error) {
	return m.documents(m.Called(ctx, identityKey))
}

func (m *MockDocumentRepository) FindByOwnerAndShare(ctx context.Context, owner, shareID string) (*model.Document, error) {
	return m.document(m.Called(ctx, owner, shareID))
}

func (m *MockDocumentRepository) FindByShareID(ctx context.Context, shareID string) (*model.Document, error) {
	return m.document(m.Called(ctx, shareID))
}

func (m *MockDocumentRepository) Insert(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdatePeople(ctx context.Context, owner, shareID string, people []model.Person) error {
	args := m.Called(ctx, owner, shareID, people)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateDisplayName(ctx context.Context, owner, shareID, name string) error {
	args := m.Called(ctx, owner, shareID, name)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, owner, shareID string) error {
	args := m.Called(ctx, owner, shareID)
	return args.Error(0)
}

func (m *MockDocumentRepository) ScanAll(ctx context.Context) ([]model.Document, error) {
	return m.documents(m.Called(ctx))
}
