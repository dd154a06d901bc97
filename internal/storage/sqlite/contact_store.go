package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/pkg/types"
)

// StoreContact creates or updates a contact (upsert semantics).
func (s *Store) StoreContact(ctx context.Context, contact *types.Contact) error {
	if contact == nil {
		return storage.ErrInvalidInput
	}
	if contact.ID == "" {
		return fmt.Errorf("%w: contact ID is required", storage.ErrInvalidInput)
	}
	if contact.Name == "" {
		return fmt.Errorf("%w: contact name is required", storage.ErrInvalidInput)
	}

	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	if contact.UpdatedAt.IsZero() {
		contact.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO contacts (
			id, name, gender, company, job_title, email, phone, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			gender = excluded.gender,
			company = excluded.company,
			job_title = excluded.job_title,
			email = excluded.email,
			phone = excluded.phone,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		contact.ID, contact.Name, string(contact.Gender), contact.Company,
		contact.JobTitle, contact.Email, contact.Phone, contact.Notes,
		contact.CreatedAt, contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store contact: %w", err)
	}
	return nil
}

const contactColumns = `id, name, gender, company, job_title, email, phone, notes, created_at, updated_at`

// GetContact retrieves a contact by ID.
func (s *Store) GetContact(ctx context.Context, id string) (*types.Contact, error) {
	if id == "" {
		return nil, storage.ErrInvalidInput
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)

	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// ListContacts retrieves contacts with pagination and filtering.
func (s *Store) ListContacts(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Contact], error) {
	opts.Normalize()

	where := ""
	args := []interface{}{}
	if opts.Company != "" {
		where = " WHERE company = ?"
		args = append(args, opts.Company)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	// SortBy/SortOrder are whitelist-validated by Normalize.
	query := fmt.Sprintf(
		`SELECT `+contactColumns+` FROM contacts%s ORDER BY %s %s LIMIT ? OFFSET ?`,
		where, opts.SortBy, opts.SortOrder)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	items := []types.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		items = append(items, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return &storage.PaginatedResult[types.Contact]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// DeleteContact removes a contact. Edges referencing it are left in place.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	if id == "" {
		return storage.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Directory loads every contact as an id-keyed lookup.
func (s *Store) Directory(ctx context.Context) (types.ContactDirectory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts`)
	if err != nil {
		return nil, fmt.Errorf("failed to load contact directory: %w", err)
	}
	defer rows.Close()

	dir := types.ContactDirectory{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		dir[contact.ID] = contact
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return dir, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*types.Contact, error) {
	var c types.Contact
	var gender string
	err := row.Scan(
		&c.ID, &c.Name, &gender, &c.Company, &c.JobTitle,
		&c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Gender = types.Gender(gender)
	return &c, nil
}
