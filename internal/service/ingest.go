package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"doctransfer/internal/identity"
	"doctransfer/internal/model"
	"doctransfer/internal/repository"
	"doctransfer/internal/storage"
)

// UploadEvent is an upload-completion notification for a single object.
type UploadEvent struct {
	Bucket string
	Key    string
	Size   int64
}

// IngestResult tells whether the event produced a document.
type IngestResult struct {
	Processed bool
	Document  *model.Document
}

// IngestService turns objects uploaded to private/<subject>/<filename> into owned documents.
type IngestService interface {
	Transform(ctx context.Context, event UploadEvent) (*IngestResult, error)
}

// LifecycleOptions carries the namespaces and retention used by ingestion.
type LifecycleOptions struct {
	PrivateNamespace string
	SecureNamespace  string
	Retention        time.Duration
}

type ingestService struct {
	repo      repository.DocumentRepository
	store     storage.ObjectStore
	directory identity.Directory
	audit     AuditLog
	opts      LifecycleOptions
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewIngestService constructs an IngestService.
func NewIngestService(
	repo repository.DocumentRepository,
	store storage.ObjectStore,
	directory identity.Directory,
	audit AuditLog,
	opts LifecycleOptions,
	log *zap.Logger,
) IngestService {
	return &ingestService{
		repo:      repo,
		store:     store,
		directory: directory,
		audit:     audit,
		opts:      opts,
		log:       log.Named("ingest"),
		now:       utcNow,
		newID:     uuid.NewString,
	}
}

func (s *ingestService) Transform(ctx context.Context, event UploadEvent) (res *IngestResult, err error) {
	ctx, span := otel.Tracer("doctransfer/service").Start(ctx, "ingest.Transform",
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	span.SetAttributes(attribute.String("object.key", event.Key), attribute.Int64("object.size", event.Size))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	segments := strings.Split(strings.TrimPrefix(event.Key, "/"), "/")
	if segments[0] != s.opts.PrivateNamespace {
		return &IngestResult{Processed: false}, nil
	}
	if len(segments) < 3 || segments[len(segments)-1] == "" || segments[len(segments)-2] == "" {
		return nil, fmt.Errorf("%w: %s", ErrMalformedUploadPath, event.Key)
	}
	subjectID := segments[len(segments)-2]
	displayName := segments[len(segments)-1]

	owner, err := s.directory.UserBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, subjectID)
	}

	size := event.Size
	if size <= 0 {
		if size, err = s.store.Size(ctx, event.Key); err != nil {
			return nil, fmt.Errorf("stat object: %w", err)
		}
	}

	secureKey := s.opts.SecureNamespace + "/" + s.newID()
	if err := s.store.Copy(ctx, event.Key, secureKey); err != nil {
		return nil, fmt.Errorf("copy object: %w", err)
	}
	if err := s.store.Delete(ctx, event.Key); err != nil {
		s.log.Error("orphaned secure object", zap.String("storage_key", secureKey), zap.String("source_key", event.Key), zap.Error(err))
		return nil, fmt.Errorf("delete source object: %w", err)
	}

	now := s.now()
	doc := &model.Document{
		Owner:        owner.Email,
		OwnerName:    owner.Name,
		OwnerSurname: owner.Surname,
		OwnerSubject: subjectID,
		ShareID:      strings.ReplaceAll(s.newID(), "-", ""),
		DisplayName:  displayName,
		StorageKey:   secureKey,
		Size:         size,
		UploadedAt:   now,
		ExpiresAt:    now.Add(s.opts.Retention),
		People:       []model.Person{},
	}
	if err := s.repo.Insert(ctx, doc); err != nil {
		s.log.Error("orphaned secure object", zap.String("storage_key", secureKey), zap.Error(err))
		return nil, fmt.Errorf("insert document: %w", err)
	}

	_ = s.audit.Append(ctx, owner.Person(), doc.ShareID, doc.StorageKey, doc.DisplayName, ActionUploaded)

	s.log.Info("document ingested",
		zap.String("owner", doc.Owner),
		zap.String("share_id", doc.ShareID),
		zap.Int64("size", doc.Size),
	)
	span.SetAttributes(attribute.String("document.share_id", doc.ShareID))
	return &IngestResult{Processed: true, Document: doc}, nil
}
