package sqlite

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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relationship_edges WHERE pair_key = ?`, pairKey).Scan(&existing); err != nil {
		return fmt.Errorf("failed to check existing pair: %w", err)
	}
	if existing > 0 {
		return storage.ErrPairExists
	}

	for _, edge := range []*types.RelationshipEdge{edgeAToB, edgeBToA} {
		if err := insertEdge(ctx, tx, edge, pairKey); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pair: %w", err)
	}
	return nil
}

// GetPair returns both directions for an unordered contact pair, oriented
// so the first edge runs contactAID→contactBID.
func (s *Store) GetPair(ctx context.Context, contactAID, contactBID string) (*types.RelationshipEdge, *types.RelationshipEdge, error) {
	pairKey := types.PairKey(contactAID, contactBID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+edgeColumns+` FROM relationship_edges WHERE pair_key = ?`, pairKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pair: %w", err)
	}
	defer rows.Close()

	var forward, reverse *types.RelationshipEdge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if edge.ContactAID == contactAID {
			forward = edge
		} else {
			reverse = edge
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate pair: %w", err)
	}

	if forward == nil || reverse == nil {
		return nil, nil, storage.ErrNotFound
	}
	return forward, reverse, nil
}

// UpdatePair persists both directions in one transaction.
func (s *Store) UpdatePair(ctx context.Context, edgeAToB, edgeBToA *types.RelationshipEdge) error {
	if edgeAToB == nil || edgeBToA == nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, edge := range []*types.RelationshipEdge{edgeAToB, edgeBToA} {
		res, err := tx.ExecContext(ctx, `
			UPDATE relationship_edges SET
				type = ?, category = ?, strength = ?, status = ?,
				start_date = ?, end_date = ?, is_mutual = ?,
				notes = ?, context = ?,
				is_gender_resolved = ?, original_type = ?, updated_at = ?
			WHERE id = ?`,
			edge.Type, string(edge.Category), edge.Strength, string(edge.Status),
			nullTime(edge.StartDate), nullTime(edge.EndDate), edge.IsMutual,
			edge.Notes, edge.Context,
			edge.IsGenderResolved, edge.OriginalType, edge.UpdatedAt,
			edge.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update edge %s: %w", edge.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pair update: %w", err)
	}
	return nil
}

// DeletePair removes both directions for an unordered contact pair.
func (s *Store) DeletePair(ctx context.Context, contactAID, contactBID string) error {
	pairKey := types.PairKey(contactAID, contactBID)

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM relationship_edges WHERE pair_key = ?`, pairKey)
	if err != nil {
		return fmt.Errorf("failed to delete pair: %w", err)
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

// ListEdges retrieves relationship edges with pagination and filtering.
func (s *Store) ListEdges(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.RelationshipEdge], error) {
	opts.Normalize()

	where := ""
	args := []interface{}{}
	appendCond := func(cond string, arg interface{}) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
		args = append(args, arg)
	}

	if opts.Category != "" {
		appendCond("category = ?", string(opts.Category))
	}
	if opts.Status != "" {
		appendCond("status = ?", string(opts.Status))
	}
	if opts.ContactID != "" {
		if where == "" {
			where = " WHERE (contact_a_id = ? OR contact_b_id = ?)"
		} else {
			where += " AND (contact_a_id = ? OR contact_b_id = ?)"
		}
		args = append(args, opts.ContactID, opts.ContactID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relationship_edges`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count edges: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT `+edgeColumns+` FROM relationship_edges%s ORDER BY %s %s, id LIMIT ? OFFSET ?`,
		where, opts.SortBy, opts.SortOrder)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	defer rows.Close()

	items := []types.RelationshipEdge{}
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		items = append(items, *edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}

	return &storage.PaginatedResult[types.RelationshipEdge]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// EdgesForContact returns every edge touching the contact, in creation order.
func (s *Store) EdgesForContact(ctx context.Context, contactID string) ([]*types.RelationshipEdge, error) {
	if contactID == "" {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+edgeColumns+` FROM relationship_edges
		 WHERE contact_a_id = ? OR contact_b_id = ?
		 ORDER BY created_at, id`,
		contactID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges for contact: %w", err)
	}
	defer rows.Close()

	return collectEdges(rows)
}

// AllEdges returns every stored edge in creation order.
func (s *Store) AllEdges(ctx context.Context) ([]*types.RelationshipEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+edgeColumns+` FROM relationship_edges ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	return collectEdges(rows)
}

func collectEdges(rows *sql.Rows) ([]*types.RelationshipEdge, error) {
	edges := []*types.RelationshipEdge{}
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}
	return edges, nil
}

func insertEdge(ctx context.Context, tx *sql.Tx, edge *types.RelationshipEdge, pairKey string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO relationship_edges (
			id, pair_id, pair_key, contact_a_id, contact_b_id, type, category,
			strength, status, start_date, end_date, is_mutual, notes, context,
			is_gender_resolved, original_type, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		edge.ID, edge.PairID, pairKey, edge.ContactAID, edge.ContactBID,
		edge.Type, string(edge.Category), edge.Strength, string(edge.Status),
		nullTime(edge.StartDate), nullTime(edge.EndDate), edge.IsMutual,
		edge.Notes, edge.Context, edge.IsGenderResolved, edge.OriginalType,
		edge.CreatedAt, edge.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert edge %s: %w", edge.ID, err)
	}
	return nil
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

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
