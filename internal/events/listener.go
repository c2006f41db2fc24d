package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"doctransfer/internal/service"
	"doctransfer/internal/storage"
)

const resubscribeDelay = 5 * time.Second

// Dispatcher feeds upload events to the ingestion transform.
type Dispatcher struct {
	ingest service.IngestService
	log    *zap.Logger
}

func NewDispatcher(ingest service.IngestService, log *zap.Logger) *Dispatcher {
	return &Dispatcher{ingest: ingest, log: log.Named("events")}
}

// Dispatch transforms each event in order and returns how many produced a document.
// Failures do not stop the batch; they are joined into the returned error.
func (d *Dispatcher) Dispatch(ctx context.Context, events []service.UploadEvent) (int, error) {
	var (
		processed int
		errs      []error
	)
	for _, ev := range events {
		res, err := d.ingest.Transform(ctx, ev)
		if err != nil {
			d.log.Error("ingest failed", zap.String("key", ev.Key), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if res.Processed {
			processed++
		}
	}
	return processed, errors.Join(errs...)
}

// Listener subscribes to bucket notifications and dispatches them until stopped.
type Listener struct {
	notifier   storage.Notifier
	dispatcher *Dispatcher
	prefix     string
	log        *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewListener(notifier storage.Notifier, dispatcher *Dispatcher, prefix string, log *zap.Logger) *Listener {
	return &Listener{notifier: notifier, dispatcher: dispatcher, prefix: prefix, log: log.Named("listener")}
}

// Start runs the subscription loop in the background.
func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.Run(ctx)
	}()
}

// Stop cancels the subscription and waits for the loop to exit.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

// Run consumes notifications until ctx is done, resubscribing when the stream ends.
func (l *Listener) Run(ctx context.Context) {
	l.log.Info("listening for uploads", zap.String("prefix", l.prefix))
	for {
		for n := range l.notifier.Listen(ctx, l.prefix) {
			if n.Err != nil {
				l.log.Warn("notification error", zap.Error(n.Err))
				continue
			}
			events := make([]service.UploadEvent, 0, len(n.Objects))
			for _, o := range n.Objects {
				events = append(events, service.UploadEvent{Bucket: o.Bucket, Key: o.Key, Size: o.Size})
			}
			_, _ = l.dispatcher.Dispatch(ctx, events)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
			l.log.Info("resubscribing to bucket notifications")
		}
	}
}
