package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doctransfer/internal/service"
	svcMocks "doctransfer/internal/service/mocks"
	"doctransfer/internal/storage"
)

func TestDecodeS3Event(t *testing.T) {
	body := []byte(`{"Records":[
		{"eventName":"s3:ObjectCreated:Put","s3":{"bucket":{"name":"docs"},"object":{"key":"private/sub-1/my+report%282%29.pdf","size":1024}}},
		{"eventName":"ObjectCreated:CompleteMultipartUpload","s3":{"bucket":{"name":"docs"},"object":{"key":"private/sub-1/b.bin","size":5}}},
		{"eventName":"s3:ObjectRemoved:Delete","s3":{"bucket":{"name":"docs"},"object":{"key":"private/sub-1/c.txt"}}}
	]}`)

	events, err := DecodeS3Event(body)

	require.NoError(t, err)
	assert.Equal(t, []service.UploadEvent{
		{Bucket: "docs", Key: "private/sub-1/my report(2).pdf", Size: 1024},
		{Bucket: "docs", Key: "private/sub-1/b.bin", Size: 5},
	}, events)
}

func TestDecodeS3Event_Invalid(t *testing.T) {
	_, err := DecodeS3Event([]byte(`{"Records":`))
	assert.Error(t, err)

	_, err = DecodeS3Event([]byte(`{"Records":[{"s3":{"object":{"key":"bad%zz"}}}]}`))
	assert.Error(t, err)
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	ingest := new(svcMocks.MockIngestService)
	ok := service.UploadEvent{Key: "private/sub/a.txt", Size: 1}
	ignored := service.UploadEvent{Key: "public/a.txt", Size: 1}
	broken := service.UploadEvent{Key: "private/a.txt", Size: 1}

	ingest.On("Transform", ctx, ok).Return(&service.IngestResult{Processed: true}, nil)
	ingest.On("Transform", ctx, ignored).Return(&service.IngestResult{Processed: false}, nil)
	ingest.On("Transform", ctx, broken).Return(nil, service.ErrMalformedUploadPath)

	n, err := NewDispatcher(ingest, zap.NewNop()).Dispatch(ctx, []service.UploadEvent{ok, broken, ignored})

	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, service.ErrMalformedUploadPath)
	ingest.AssertExpectations(t)
}

type fakeNotifier struct {
	batches []storage.Notification
}

func (f *fakeNotifier) Listen(ctx context.Context, prefix string) <-chan storage.Notification {
	ch := make(chan storage.Notification, len(f.batches))
	for _, b := range f.batches {
		ch <- b
	}
	f.batches = nil
	close(ch)
	return ch
}

func TestListener_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &fakeNotifier{batches: []storage.Notification{
		{Err: errors.New("stream hiccup")},
		{Objects: []storage.ObjectCreated{{Bucket: "docs", Key: "private/sub/a.txt", Size: 3}}},
	}}
	ingest := new(svcMocks.MockIngestService)
	ingest.On("Transform", mock.Anything, service.UploadEvent{Bucket: "docs", Key: "private/sub/a.txt", Size: 3}).
		Run(func(mock.Arguments) { cancel() }).
		Return(&service.IngestResult{Processed: true}, nil).Once()

	l := NewListener(notifier, NewDispatcher(ingest, zap.NewNop()), "private/", zap.NewNop())

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
	ingest.AssertExpectations(t)
}
