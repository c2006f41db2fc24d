package service

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"doctransfer/internal/repository"
	"doctransfer/internal/storage"
)

// SweepResult summarizes one expiration pass.
type SweepResult struct {
	Scanned    int
	Expired    int
	Deleted    int
	Skipped    int
	FreedBytes int64
}

// Sweeper purges documents whose expiry is strictly before now.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (*SweepResult, error)
}

type sweeper struct {
	repo  repository.DocumentRepository
	store storage.ObjectStore
	audit AuditLog
	log   *zap.Logger
}

// NewSweeper constructs a Sweeper.
func NewSweeper(repo repository.DocumentRepository, store storage.ObjectStore, audit AuditLog, log *zap.Logger) Sweeper {
	return &sweeper{repo: repo, store: store, audit: audit, log: log.Named("sweep")}
}

// Sweep deletes the object of each expired document before its record.
// A document whose object cannot be deleted is skipped and retried on the next pass.
func (s *sweeper) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	ctx, span := otel.Tracer("doctransfer/service").Start(ctx, "sweep.Sweep")
	defer span.End()

	docs, err := s.repo.ScanAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	res := &SweepResult{Scanned: len(docs)}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !doc.Expired(now) {
			continue
		}
		res.Expired++

		log := s.log.With(zap.String("owner", doc.Owner), zap.String("share_id", doc.ShareID))
		if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
			res.Skipped++
			log.Warn("expired object delete failed", zap.String("storage_key", doc.StorageKey), zap.Error(err))
			continue
		}

		_ = s.audit.Append(ctx, SystemActor, doc.ShareID, doc.StorageKey, doc.DisplayName, ActionExpired)

		if err := s.repo.Delete(ctx, doc.Owner, doc.ShareID); err != nil {
			res.Skipped++
			log.Error("expired record delete failed", zap.Error(err))
			continue
		}
		res.Deleted++
		res.FreedBytes += doc.Size
	}

	span.SetAttributes(
		attribute.Int("sweep.scanned", res.Scanned),
		attribute.Int("sweep.deleted", res.Deleted),
		attribute.Int("sweep.skipped", res.Skipped),
	)
	s.log.Info("sweep finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("expired", res.Expired),
		zap.Int("deleted", res.Deleted),
		zap.Int("skipped", res.Skipped),
		zap.String("freed", units.HumanSize(float64(res.FreedBytes))),
	)
	return res, nil
}
