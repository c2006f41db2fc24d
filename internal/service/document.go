package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"doctransfer/internal/model"
	"doctransfer/internal/repository"
	"doctransfer/internal/storage"
)

// ShareResult reports the recipients that were refused by the share policy.
type ShareResult struct {
	Blocked []string `json:"forbidden,omitempty"`
}

// UploadLink is a presigned PUT target inside the caller's private namespace.
type UploadLink struct {
	URL       string `json:"upload_link"`
	Key       string `json:"key"`
	ExpiresIn int64  `json:"expires_in"`
}

// DocumentService defines the owner and recipient use cases on documents.
type DocumentService interface {
	// ListFor returns the documents the user owns followed by those shared with the user's identity.
	ListFor(ctx context.Context, user model.User) ([]DocumentView, error)

	// Share replaces the recipient set of an owned document, minus recipients refused by policy.
	Share(ctx context.Context, user model.User, shareID string, recipients []model.Person) (*ShareResult, error)

	// Rename changes the display name of an owned document.
	Rename(ctx context.Context, user model.User, shareID, newName string) error

	// Delete removes an owned document's object and then its record.
	// It reports false without error when the document does not exist.
	Delete(ctx context.Context, user model.User, shareID string) (bool, error)

	// DownloadLink issues a time-limited link for the owner or a listed recipient.
	DownloadLink(ctx context.Context, user model.User, shareID string) (string, error)

	// UploadLink issues a presigned upload target for a new file.
	UploadLink(ctx context.Context, user model.User, filename string) (*UploadLink, error)
}

type documentService struct {
	repo             repository.DocumentRepository
	store            storage.ObjectStore
	audit            AuditLog
	policy           SharePolicy
	privateNamespace string
	log              *zap.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	repo repository.DocumentRepository,
	store storage.ObjectStore,
	audit AuditLog,
	policy SharePolicy,
	privateNamespace string,
	log *zap.Logger,
) DocumentService {
	return &documentService{
		repo:             repo,
		store:            store,
		audit:            audit,
		policy:           policy,
		privateNamespace: privateNamespace,
		log:              log.Named("documents"),
	}
}

func (s *documentService) ListFor(ctx context.Context, user model.User) ([]DocumentView, error) {
	owned, err := s.repo.ListByOwner(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("list owned documents: %w", err)
	}
	shared, err := s.repo.ListSharedWith(ctx, user.IdentityKey())
	if err != nil {
		return nil, fmt.Errorf("list shared documents: %w", err)
	}

	views := make([]DocumentView, 0, len(owned)+len(shared))
	for _, d := range owned {
		views = append(views, newDocumentView(d, user.Email))
	}
	for _, d := range shared {
		views = append(views, newDocumentView(d, user.Email))
	}
	return views, nil
}

func (s *documentService) Share(ctx context.Context, user model.User, shareID string, recipients []model.Person) (*ShareResult, error) {
	doc, err := s.repo.FindByOwnerAndShare(ctx, user.Email, shareID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	allowed, blocked := s.policy.Partition(recipients)
	if err := s.repo.UpdatePeople(ctx, user.Email, shareID, allowed); err != nil {
		return nil, fmt.Errorf("update people: %w", err)
	}

	actor := user.Person()
	if len(blocked) > 0 {
		s.appendAudit(ctx, actor, doc, fmt.Sprintf("sharing with %s denied", strings.Join(blocked, ", ")))
	}
	s.appendAudit(ctx, actor, doc, "shared with "+strings.Join(model.PeopleKeys(allowed), ", "))

	return &ShareResult{Blocked: blocked}, nil
}

func (s *documentService) Rename(ctx context.Context, user model.User, shareID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrNameRequired
	}
	doc, err := s.repo.FindByOwnerAndShare(ctx, user.Email, shareID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}

	if err := s.repo.UpdateDisplayName(ctx, user.Email, shareID, newName); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	// The entry keeps the name the document had before the rename.
	s.appendAudit(ctx, user.Person(), doc, "renamed to "+newName)
	return nil
}

func (s *documentService) Delete(ctx context.Context, user model.User, shareID string) (bool, error) {
	doc, err := s.repo.FindByOwnerAndShare(ctx, user.Email, shareID)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	// The record stays when the object cannot be removed.
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		return false, fmt.Errorf("delete object: %w", err)
	}
	s.appendAudit(ctx, user.Person(), doc, ActionDeleted)
	if err := s.repo.Delete(ctx, user.Email, shareID); err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return true, nil
}

func (s *documentService) DownloadLink(ctx context.Context, user model.User, shareID string) (string, error) {
	doc, err := s.repo.FindByShareID(ctx, shareID)
	if err != nil {
		return "", err
	}
	if doc == nil || !canDownload(*doc, user) {
		return "", ErrForbidden
	}

	link, err := s.store.PresignDownload(ctx, doc.StorageKey, doc.DisplayName)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	s.appendAudit(ctx, user.Person(), doc, ActionDownloaded)
	return link, nil
}

func canDownload(doc model.Document, user model.User) bool {
	return doc.Owner == user.Email || doc.SharedWith(user.Person())
}

func (s *documentService) UploadLink(ctx context.Context, user model.User, filename string) (*UploadLink, error) {
	if user.SubjectID == "" {
		return nil, ErrIdentityNotFound
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return nil, ErrNameRequired
	}

	key := path.Join(s.privateNamespace, user.SubjectID, name)
	link, ttl, err := s.store.PresignUpload(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadLink{URL: link, Key: key, ExpiresIn: int64(ttl.Seconds())}, nil
}

// appendAudit records an action after the primary change succeeded. Failures are logged by the audit log.
func (s *documentService) appendAudit(ctx context.Context, actor model.Person, doc *model.Document, action string) {
	_ = s.audit.Append(ctx, actor, doc.ShareID, doc.StorageKey, doc.DisplayName, action)
}
