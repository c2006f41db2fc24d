package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"doctransfer/internal/model"
	"doctransfer/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// Recipients live in a text[] column of email#name#surname keys and are parsed here.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `owner, owner_name, owner_surname, owner_subject, share_id, display_name,
		storage_key, size, uploaded_at, expires_at, people`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d    model.Document
		keys []string
	)
	if err := row.Scan(
		&d.Owner,
		&d.OwnerName,
		&d.OwnerSurname,
		&d.OwnerSubject,
		&d.ShareID,
		&d.DisplayName,
		&d.StorageKey,
		&d.Size,
		&d.UploadedAt,
		&d.ExpiresAt,
		pq.Array(&keys),
	); err != nil {
		return nil, err
	}
	d.People = model.ParsePeople(keys)
	return &d, nil
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *DocumentPostgres) findOne(ctx context.Context, q string, args ...any) (*model.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// ListByOwner returns the documents owned by the given email.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, owner string) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE owner = $1
		ORDER BY uploaded_at, share_id`
	return r.queryDocuments(ctx, q, owner)
}

// ListSharedWith returns the documents whose people array contains the identity key.
func (r *DocumentPostgres) ListSharedWith(ctx context.Context, identityKey string) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE $1 = ANY(people)
		ORDER BY uploaded_at, share_id`
	return r.queryDocuments(ctx, q, identityKey)
}

// FindByOwnerAndShare fetches a document by its composite key.
func (r *DocumentPostgres) FindByOwnerAndShare(ctx context.Context, owner, shareID string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE owner = $1 AND share_id = $2`
	return r.findOne(ctx, q, owner, shareID)
}

// FindByShareID fetches a document by its share id.
func (r *DocumentPostgres) FindByShareID(ctx context.Context, shareID string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE share_id = $1`
	return r.findOne(ctx, q, shareID)
}

// Insert stores a new document row.
func (r *DocumentPostgres) Insert(ctx context.Context, doc *model.Document) error {
	q := `INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, q,
		doc.Owner,
		doc.OwnerName,
		doc.OwnerSurname,
		doc.OwnerSubject,
		doc.ShareID,
		doc.DisplayName,
		doc.StorageKey,
		doc.Size,
		doc.UploadedAt,
		doc.ExpiresAt,
		pq.Array(model.PeopleKeys(doc.People)),
	)
	return err
}

// UpdatePeople replaces the recipients array. The last writer wins.
func (r *DocumentPostgres) UpdatePeople(ctx context.Context, owner, shareID string, people []model.Person) error {
	const q = `UPDATE documents SET people = $3 WHERE owner = $1 AND share_id = $2`
	_, err := r.db.ExecContext(ctx, q, owner, shareID, pq.Array(model.PeopleKeys(people)))
	return err
}

// UpdateDisplayName sets a new display name.
func (r *DocumentPostgres) UpdateDisplayName(ctx context.Context, owner, shareID, name string) error {
	const q = `UPDATE documents SET display_name = $3 WHERE owner = $1 AND share_id = $2`
	_, err := r.db.ExecContext(ctx, q, owner, shareID, name)
	return err
}

// Delete removes a document row. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, owner, shareID string) error {
	const q = `DELETE FROM documents WHERE owner = $1 AND share_id = $2`
	_, err := r.db.ExecContext(ctx, q, owner, shareID)
	return err
}

// ScanAll returns every document row.
func (r *DocumentPostgres) ScanAll(ctx context.Context) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		ORDER BY expires_at, share_id`
	return r.queryDocuments(ctx, q)
}
