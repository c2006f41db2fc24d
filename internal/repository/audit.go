package repository

import (
	"context"

	"doctransfer/internal/model"
)

// AuditRepository persists the append-only audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry model.AuditEntry) error
	// ListAll returns every entry ordered by action time.
	ListAll(ctx context.Context) ([]model.AuditEntry, error)
}
