package postgres

import (
	"context"
	"database/sql"

	"doctransfer/internal/model"
	"doctransfer/internal/repository"
)

// AuditPostgres stores audit entries. It exposes no update or delete path.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Append inserts a single audit entry.
func (r *AuditPostgres) Append(ctx context.Context, e model.AuditEntry) error {
	const q = `
		INSERT INTO audit_entries (actor_email, actor_name, actor_surname, share_id, storage_key,
			display_name, action, action_time, display_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, q,
		e.Actor.Email,
		e.Actor.Name,
		e.Actor.Surname,
		e.ShareID,
		e.StorageKey,
		e.DisplayName,
		e.Action,
		e.ActionTime,
		e.DisplayTime,
	)
	return err
}

// ListAll returns the whole trail in chronological order.
func (r *AuditPostgres) ListAll(ctx context.Context) ([]model.AuditEntry, error) {
	const q = `
		SELECT actor_email, actor_name, actor_surname, share_id, storage_key,
			display_name, action, action_time, display_time
		FROM audit_entries
		ORDER BY action_time, id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(
			&e.Actor.Email,
			&e.Actor.Name,
			&e.Actor.Surname,
			&e.ShareID,
			&e.StorageKey,
			&e.DisplayName,
			&e.Action,
			&e.ActionTime,
			&e.DisplayTime,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
