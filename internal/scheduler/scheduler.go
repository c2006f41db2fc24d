package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"doctransfer/internal/service"
)

// Scheduler runs the expiration sweep on a cron schedule.
// Runs are not guarded against overlap.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  service.Sweeper
	schedule string
	log      *zap.Logger
	now      func() time.Time

	runs    *prometheus.CounterVec
	deleted prometheus.Counter
	skipped prometheus.Counter
	freed   prometheus.Counter
}

// New creates a Scheduler and registers its metrics on reg.
func New(sweeper service.Sweeper, schedule string, reg prometheus.Registerer, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		sweeper:  sweeper,
		schedule: schedule,
		log:      log.Named("scheduler"),
		now:      func() time.Time { return time.Now().UTC() },
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_sweep_runs_total",
			Help: "Expiration sweep runs by result.",
		}, []string{"result"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_sweep_deleted_total",
			Help: "Expired documents removed by the sweep.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_sweep_skipped_total",
			Help: "Expired documents left for a later sweep after a failure.",
		}),
		freed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_sweep_freed_bytes_total",
			Help: "Bytes of object storage released by the sweep.",
		}),
	}

	for _, c := range []prometheus.Collector{s.runs, s.deleted, s.skipped, s.freed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.Info("sweep scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops scheduling and waits for a running sweep or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	res, err := s.sweeper.Sweep(ctx, s.now())
	if err != nil {
		s.runs.WithLabelValues("error").Inc()
		s.log.Error("sweep failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		if res == nil {
			return
		}
	} else {
		s.runs.WithLabelValues("success").Inc()
	}

	s.deleted.Add(float64(res.Deleted))
	s.skipped.Add(float64(res.Skipped))
	s.freed.Add(float64(res.FreedBytes))
}
