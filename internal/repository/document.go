package repository

import (
	"context"

	"doctransfer/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// Reads return an empty, non-nil slice when nothing matches and a nil document for an absent key.
type DocumentRepository interface {
	// ListByOwner returns every document owned by the given email.
	ListByOwner(ctx context.Context, owner string) ([]model.Document, error)

	// ListSharedWith returns documents whose recipients contain the exact identity key.
	ListSharedWith(ctx context.Context, identityKey string) ([]model.Document, error)

	// FindByOwnerAndShare returns the document addressed by its composite key.
	FindByOwnerAndShare(ctx context.Context, owner, shareID string) (*model.Document, error)

	// FindByShareID looks a document up by its globally unique share id.
	FindByShareID(ctx context.Context, shareID string) (*model.Document, error)

	// Insert stores a new document record.
	Insert(ctx context.Context, doc *model.Document) error

	// UpdatePeople replaces the recipient set of a document.
	UpdatePeople(ctx context.Context, owner, shareID string, people []model.Person) error

	// UpdateDisplayName changes the display name of a document.
	UpdateDisplayName(ctx context.Context, owner, shareID, name string) error

	// Delete removes a document record. Missing rows are not an error.
	Delete(ctx context.Context, owner, shareID string) error

	// ScanAll returns every document record.
	ScanAll(ctx context.Context) ([]model.Document, error)
}
