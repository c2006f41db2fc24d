package repository

import (
	"context"

	"doctransfer/internal/model"
)

// UserRepository stores the directory of identities seen by the service.
type UserRepository interface {
	// Upsert records the user under its subject id, refreshing the identity fields.
	Upsert(ctx context.Context, user model.User) error
	// FindBySubjectID returns nil when the subject is unknown.
	FindBySubjectID(ctx context.Context, subjectID string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
}
