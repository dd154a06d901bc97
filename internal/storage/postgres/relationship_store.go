package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/pkg/types"
)

const edgeColumns = `id, pair_id, contact_a_id, contact_b_id, type, category,
	strength, status, start_date, end_date, is_mutual, notes, context,
	is_gender_resolved, original_type, created_at, updated_at`

// CreatePair inserts both directions of a new pair in one transaction.
func (s *Store) CreatePair(ctx context.Context, edgeAToB, edgeBToA *types.RelationshipEdge) error {
	if edgeAToB == nil || edgeBToA == nil {
		return storage.ErrInvalidInput
	}
	pairKey := edgeAToB.PairKey()

	return s.execute(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("postgres: failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		// Lock any existing rows for the pair so concurrent creates for the
		// same unordered pair serialize instead of racing.
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM relationship_edges WHERE pair_key = $1 FOR UPDATE`, pairKey)
		if err != nil {
			return fmt.Errorf("postgres: failed to check existing pair: %w", err)
		}
		exists := rows.Next()
		if err := rows.Close(); err != nil {
			return fmt.Errorf("postgres: failed to check existing pair: %w", err)
		}
		if exists {
			return storage.ErrPairExists
		}

		for _, edge := range []*types.RelationshipEdge{edgeAToB, edgeBToA} {
			if err := insertEdge(ctx, tx, edge, pairKey); err != nil {
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("postgres: failed to commit pair: %w", err)
		}
		return nil
	})
}

// GetPair returns both directions for an unordered contact pair, oriented
// so the first edge runs contactAID→contactBID.
func (s *Store) GetPair(ctx context.Context, contactAID, contactBID string) (*types.RelationshipEdge, *types.RelationshipEdge, error) {
	pairKey := types.PairKey(contactAID, contactBID)

	var forward, reverse *types.RelationshipEdge
	err := s.execute(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+edgeColumns+` FROM relationship_edges WHERE pair_key = $1`, pairKey)
		if err != nil {
			return fmt.Errorf("postgres: failed to get pair: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			edge, err := scanEdge(rows)
			if err != nil {
				return fmt.Errorf("postgres: failed to scan edge: %w", err)
			}
			if edge.ContactAID == contactAID {
				forward = edge
			} else {
				reverse = edge
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("postgres: failed to iterate pair: %w", err)
		}

		if forward == nil || reverse == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return forward, reverse, nil
}

// UpdatePair persists both directions in one transaction.
func (s *Store) UpdatePair(ctx context.Context, edgeAToB, edgeBToA *types.RelationshipEdge) error {
	if edgeAToB == nil || edgeBToA == nil {
		return storage.ErrInvalidInput
	}

	return s.execute(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("postgres: failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		for _, edge := range []*types.RelationshipEdge{edgeAToB, edgeBToA} {
			res, err := tx.ExecContext(ctx, `
				UPDATE relationship_edges SET
					type = $1, category = $2, strength = $3, status = $4,
					start_date = $5, end_date = $6, is_mutual = $7,
					notes = $8, context = $9,
					is_gender_resolved = $10, original_type = $11, updated_at = $12
				WHERE id = $13`,
				edge.Type, string(edge.Category), edge.Strength, string(edge.Status),
				nullTime(edge.StartDate), nullTime(edge.EndDate), edge.IsMutual,
				edge.Notes, edge.Context,
				edge.IsGenderResolved, edge.OriginalType, edge.UpdatedAt,
				edge.ID,
			)
			if err != nil {
				return fmt.Errorf("postgres: failed to update edge %s: %w", edge.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("postgres: failed to check update result: %w", err)
			}
			if n == 0 {
				return storage.ErrNotFound
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("postgres: failed to commit pair update: %w", err)
		}
		return nil
	})
}

// DeletePair removes both directions for an unordered contact pair.
func (s *Store) DeletePair(ctx context.Context, contactAID, contactBID string) error {
	pairKey := types.PairKey(contactAID, contactBID)

	return s.execute(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM relationship_edges WHERE pair_key = $1`, pairKey)
		if err != nil {
			return fmt.Errorf("postgres: failed to delete pair: %w", err)
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

// ListEdges retrieves relationship edges with pagination and filtering.
func (s *Store) ListEdges(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.RelationshipEdge], error) {
	opts.Normalize()

	where := ""
	args := []interface{}{}
	appendCond := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	if opts.Category != "" {
		args = append(args, string(opts.Category))
		appendCond(fmt.Sprintf("category = $%d", len(args)))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		appendCond(fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.ContactID != "" {
		args = append(args, opts.ContactID)
		appendCond(fmt.Sprintf("(contact_a_id = $%d OR contact_b_id = $%d)", len(args), len(args)))
	}

	var result *storage.PaginatedResult[types.RelationshipEdge]
	err := s.execute(ctx, func() error {
		var total int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM relationship_edges`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("postgres: failed to count edges: %w", err)
		}

		query := fmt.Sprintf(
			`SELECT `+edgeColumns+` FROM relationship_edges%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
			where, opts.SortBy, opts.SortOrder, len(args)+1, len(args)+2)
		queryArgs := append(args, opts.Limit, opts.Offset())

		rows, err := s.db.QueryContext(ctx, query, queryArgs...)
		if err != nil {
			return fmt.Errorf("postgres: failed to list edges: %w", err)
		}
		defer rows.Close()

		items := []types.RelationshipEdge{}
		for rows.Next() {
			edge, err := scanEdge(rows)
			if err != nil {
				return fmt.Errorf("postgres: failed to scan edge: %w", err)
			}
			items = append(items, *edge)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("postgres: failed to iterate edges: %w", err)
		}

		result = &storage.PaginatedResult[types.RelationshipEdge]{
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

// EdgesForContact returns every edge touching the contact, in creation order.
func (s *Store) EdgesForContact(ctx context.Context, contactID string) ([]*types.RelationshipEdge, error) {
	if contactID == "" {
		return nil, storage.ErrInvalidInput
	}

	var edges []*types.RelationshipEdge
	err := s.execute(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+edgeColumns+` FROM relationship_edges
			 WHERE contact_a_id = $1 OR contact_b_id = $1
			 ORDER BY created_at, id`,
			contactID)
		if err != nil {
			return fmt.Errorf("postgres: failed to load edges for contact: %w", err)
		}
		defer rows.Close()

		edges, err = collectEdges(rows)
		return err
	})
	return edges, err
}

// AllEdges returns every stored edge in creation order.
func (s *Store) AllEdges(ctx context.Context) ([]*types.RelationshipEdge, error) {
	var edges []*types.RelationshipEdge
	err := s.execute(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+edgeColumns+` FROM relationship_edges ORDER BY created_at, id`)
		if err != nil {
			return fmt.Errorf("postgres: failed to load edges: %w", err)
		}
		defer rows.Close()

		edges, err = collectEdges(rows)
		return err
	})
	return edges, err
}

func collectEdges(rows *sql.Rows) ([]*types.RelationshipEdge, error) {
	edges := []*types.RelationshipEdge{}
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan edge: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate edges: %w", err)
	}
	return edges, nil
}

func insertEdge(ctx context.Context, tx *sql.Tx, edge *types.RelationshipEdge, pairKey string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO relationship_edges (
			id, pair_id, pair_key, contact_a_id, contact_b_id, type, category,
			strength, status, start_date, end_date, is_mutual, notes, context,
			is_gender_resolved, original_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		edge.ID, edge.PairID, pairKey, edge.ContactAID, edge.ContactBID,
		edge.Type, string(edge.Category), edge.Strength, string(edge.Status),
		nullTime(edge.StartDate), nullTime(edge.EndDate), edge.IsMutual,
		edge.Notes, edge.Context, edge.IsGenderResolved, edge.OriginalType,
		edge.CreatedAt, edge.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert edge %s: %w", edge.ID, err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func scanEdge(row rowScanner) (*types.RelationshipEdge, error) {
	var e types.RelationshipEdge
	var category, status string
	var startDate, endDate sql.NullTime
	err := row.Scan(
		&e.ID, &e.PairID, &e.ContactAID, &e.ContactBID, &e.Type, &category,
		&e.Strength, &status, &startDate, &endDate, &e.IsMutual,
		&e.Notes, &e.Context, &e.IsGenderResolved, &e.OriginalType,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Category = types.Category(category)
	e.Status = types.Status(status)
	if startDate.Valid {
		t := startDate.Time
		e.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		e.EndDate = &t
	}
	return &e, nil
}
