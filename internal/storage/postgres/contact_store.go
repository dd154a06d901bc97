package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/pkg/types"
)

const contactColumns = `id, name, gender, company, job_title, email, phone, notes, created_at, updated_at`

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

	return s.execute(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO contacts (
				id, name, gender, company, job_title, email, phone, notes,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				gender = EXCLUDED.gender,
				company = EXCLUDED.company,
				job_title = EXCLUDED.job_title,
				email = EXCLUDED.email,
				phone = EXCLUDED.phone,
				notes = EXCLUDED.notes,
				updated_at = EXCLUDED.updated_at`,
			contact.ID, contact.Name, string(contact.Gender), contact.Company,
			contact.JobTitle, contact.Email, contact.Phone, contact.Notes,
			contact.CreatedAt, contact.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("postgres: failed to store contact: %w", err)
		}
		return nil
	})
}

// GetContact retrieves a contact by ID.
func (s *Store) GetContact(ctx context.Context, id string) (*types.Contact, error) {
	if id == "" {
		return nil, storage.ErrInvalidInput
	}

	var contact *types.Contact
	err := s.execute(ctx, func() error {
		row := s.db.QueryRowContext(ctx,
			`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)

		c, err := scanContact(row)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("postgres: failed to get contact: %w", err)
		}
		contact = c
		return nil
	})
	return contact, err
}

// ListContacts retrieves contacts with pagination and filtering.
func (s *Store) ListContacts(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Contact], error) {
	opts.Normalize()

	where := ""
	args := []interface{}{}
	if opts.Company != "" {
		where = " WHERE company = $1"
		args = append(args, opts.Company)
	}

	var result *storage.PaginatedResult[types.Contact]
	err := s.execute(ctx, func() error {
		var total int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("postgres: failed to count contacts: %w", err)
		}

		// SortBy/SortOrder are whitelist-validated by Normalize.
		query := fmt.Sprintf(
			`SELECT `+contactColumns+` FROM contacts%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
			where, opts.SortBy, opts.SortOrder, len(args)+1, len(args)+2)
		queryArgs := append(args, opts.Limit, opts.Offset())

		rows, err := s.db.QueryContext(ctx, query, queryArgs...)
		if err != nil {
			return fmt.Errorf("postgres: failed to list contacts: %w", err)
		}
		defer rows.Close()

		items := []types.Contact{}
		for rows.Next() {
			c, err := scanContact(rows)
			if err != nil {
				return fmt.Errorf("postgres: failed to scan contact: %w", err)
			}
			items = append(items, *c)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("postgres: failed to iterate contacts: %w", err)
		}

		result = &storage.PaginatedResult[types.Contact]{
			Items:    items,
			Total:    total,
			Page:     opts.Page,
			PageSize: opts.Limit,
			HasMore:  opts.Offset()+len(items) < total,
		}
		return nil
	})
	return result, err
}

// DeleteContact removes a contact. Edges referencing it are left in place.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	if id == "" {
		return storage.ErrInvalidInput
	}

	return s.execute(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("postgres: failed to delete contact: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("postgres: failed to check delete result: %w", err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// Directory loads every contact as an id-keyed lookup.
func (s *Store) Directory(ctx context.Context) (types.ContactDirectory, error) {
	var dir types.ContactDirectory
	err := s.execute(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts`)
		if err != nil {
			return fmt.Errorf("postgres: failed to load contact directory: %w", err)
		}
		defer rows.Close()

		dir = types.ContactDirectory{}
		for rows.Next() {
			c, err := scanContact(rows)
			if err != nil {
				return fmt.Errorf("postgres: failed to scan contact: %w", err)
			}
			dir[c.ID] = c
		}
		return rows.Err()
	})
	return dir, err
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
