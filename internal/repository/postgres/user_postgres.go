package postgres

import (
	"context"
	"database/sql"
	"errors"

	"doctransfer/internal/model"
	"doctransfer/internal/repository"
)

// UserPostgres is the users directory table.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Upsert inserts the user or refreshes its identity fields.
func (r *UserPostgres) Upsert(ctx context.Context, u model.User) error {
	const q = `
		INSERT INTO users (subject_id, email, name, surname, role, seen_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (subject_id) DO UPDATE
		SET email = EXCLUDED.email,
			name = EXCLUDED.name,
			surname = EXCLUDED.surname,
			role = EXCLUDED.role,
			seen_at = now()
	`
	_, err := r.db.ExecContext(ctx, q, u.SubjectID, u.Email, u.Name, u.Surname, u.Role)
	return err
}

// FindBySubjectID returns nil, nil when no user carries the subject id.
func (r *UserPostgres) FindBySubjectID(ctx context.Context, subjectID string) (*model.User, error) {
	const q = `
		SELECT subject_id, email, name, surname, role
		FROM users
		WHERE subject_id = $1
	`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, subjectID).Scan(&u.SubjectID, &u.Email, &u.Name, &u.Surname, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ListAll returns the directory ordered by email.
func (r *UserPostgres) ListAll(ctx context.Context) ([]model.User, error) {
	const q = `
		SELECT subject_id, email, name, surname, role
		FROM users
		ORDER BY email, subject_id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.SubjectID, &u.Email, &u.Name, &u.Surname, &u.Role); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
