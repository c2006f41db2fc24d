package mocks

import (
	"context"
	"time"

	"doctransfer/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockIngestService struct {
	mock.Mock
}

var _ service.IngestService = (*MockIngestService)(nil)

func (m *MockIngestService) Transform(ctx context.Context, event service.UploadEvent) (*service.IngestResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

type MockSweeper struct {
	mock.Mock
}

var _ service.Sweeper = (*MockSweeper)(nil)

func (m *MockSweeper) Sweep(ctx context.Context, now time.Time) (*service.SweepResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SweepResult), args.Error(1)
}
