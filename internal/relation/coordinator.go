package relation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kinshiphq/kinship/internal/catalog"
	"github.com/kinshiphq/kinship/pkg/types"
)

// PairStore is the storage collaborator the coordinator delegates to. Each
// call is a single logical transaction: both directions succeed or neither
// is persisted. Concurrency guarantees (at most one active pair per
// unordered contact pair) are the store's responsibility.
type PairStore interface {
	// CreatePair persists both directions of a new pair atomically.
	CreatePair(ctx context.Context, edgeAToB, edgeBToA *types.RelationshipEdge) error

	// GetPair returns the pair for an unordered contact pair, oriented so
	// that the first edge runs contactAID→contactBID.
	GetPair(ctx context.Context, contactAID, contactBID string) (*types.RelationshipEdge, *types.RelationshipEdge, error)

	// UpdatePair persists changes to both directions atomically.
	UpdatePair(ctx context.Context, edgeAToB, edgeBToA *types.RelationshipEdge) error

	// DeletePair removes both directions identified by the unordered pair.
	DeletePair(ctx context.Context, contactAID, contactBID string) error
}

// ContactResolver looks up contacts for gender-aware reverse resolution.
// A missing contact is not an error here: the reverse falls back to the
// catalog's neutral key.
type ContactResolver interface {
	GetContact(ctx context.Context, id string) (*types.Contact, error)
}

// PairAttrs are the pair-level attributes shared by both directions.
type PairAttrs struct {
	Strength  int
	Status    types.Status
	StartDate *time.Time
	EndDate   *time.Time
	IsMutual  bool
	Notes     string
	Context   string
}

// PairChanges describes a partial update to a pair. Nil fields are left
// untouched. A type change re-runs reverse resolution for the B→A side.
type PairChanges struct {
	Type      *string
	Strength  *int
	Status    *types.Status
	StartDate *time.Time
	EndDate   *time.Time
	IsMutual  *bool
	Notes     *string
	Context   *string
}

// Pair holds both directions of a relationship.
type Pair struct {
	EdgeAToB *types.RelationshipEdge `json:"edge_a_to_b"`
	EdgeBToA *types.RelationshipEdge `json:"edge_b_to_a"`
}

// Coordinator creates, updates and deletes relationship pairs, keeping the
// two directions consistent. It holds no state between calls beyond its
// collaborators.
type Coordinator struct {
	catalogs *catalog.Store
	store    PairStore
	contacts ContactResolver
	now      func() time.Time
}

// NewCoordinator creates a coordinator over the given catalog store,
// pair store and contact resolver.
func NewCoordinator(catalogs *catalog.Store, store PairStore, contacts ContactResolver) *Coordinator {
	return &Coordinator{
		catalogs: catalogs,
		store:    store,
		contacts: contacts,
		now:      time.Now,
	}
}

// CreatePair validates the request, resolves the reverse type from contact
// B's gender and writes both directions as one atomic unit. On validation
// failure it returns a *ValidationError and nothing is written.
func (c *Coordinator) CreatePair(ctx context.Context, contactAID, contactBID, typeKey string, attrs PairAttrs) (*Pair, error) {
	cat := c.catalogs.Current()

	if result := ValidateCreate(cat, contactAID, contactBID, typeKey, attrs.Strength); !result.Valid {
		return nil, &ValidationError{Errors: result.Errors}
	}

	// Lookup cannot fail after validation, but the entry is needed for the
	// category and the reverse rule.
	entry, _ := cat.Lookup(typeKey)

	now := c.now()
	normalizeAttrs(&attrs)

	pairID := uuid.NewString()
	forward := newEdge(pairID, contactAID, contactBID, typeKey, entry.Category, attrs, now)

	reverse := c.resolveReverseEdge(ctx, cat, pairID, contactAID, contactBID, typeKey, entry, attrs, now)

	if err := c.store.CreatePair(ctx, forward, reverse); err != nil {
		return nil, fmt.Errorf("relation: failed to persist pair: %w", err)
	}

	return &Pair{EdgeAToB: forward, EdgeBToA: reverse}, nil
}

// UpdatePair applies pair-level changes to both directions identically.
// A relationship type change re-resolves the B→A type from B's gender.
func (c *Coordinator) UpdatePair(ctx context.Context, contactAID, contactBID string, changes PairChanges) (*Pair, error) {
	cat := c.catalogs.Current()

	forward, reverse, err := c.store.GetPair(ctx, contactAID, contactBID)
	if err != nil {
		return nil, fmt.Errorf("relation: pair %s not found: %w", types.PairKey(contactAID, contactBID), err)
	}

	if changes.Strength != nil && !types.IsValidStrength(*changes.Strength) {
		return nil, &ValidationError{Errors: []string{fmt.Sprintf(
			"strength %d is outside the valid range [%d,%d]",
			*changes.Strength, types.StrengthMin, types.StrengthMax)}}
	}

	if changes.Type != nil {
		typeKey := *changes.Type
		if result := ValidateCreate(cat, contactAID, contactBID, typeKey, 0); !result.Valid {
			return nil, &ValidationError{Errors: result.Errors}
		}
		entry, _ := cat.Lookup(typeKey)
		forward.Type = typeKey
		forward.Category = entry.Category
		forward.IsGenderResolved = false
		forward.OriginalType = ""

		res, category := c.resolveReverse(ctx, cat, contactBID, typeKey, entry)
		reverse.Type = res.Key
		reverse.Category = category
		reverse.IsGenderResolved = res.GenderResolved
		if res.GenderResolved {
			reverse.OriginalType = typeKey
		} else {
			reverse.OriginalType = ""
		}
	}

	for _, edge := range []*types.RelationshipEdge{forward, reverse} {
		applyChanges(edge, changes)
		edge.UpdatedAt = c.now()
	}

	if err := c.store.UpdatePair(ctx, forward, reverse); err != nil {
		return nil, fmt.Errorf("relation: failed to update pair: %w", err)
	}

	return &Pair{EdgeAToB: forward, EdgeBToA: reverse}, nil
}

// DeletePair removes both directions of the pair. Deleting a single
// direction is deliberately not exposed.
func (c *Coordinator) DeletePair(ctx context.Context, contactAID, contactBID string) error {
	if err := c.store.DeletePair(ctx, contactAID, contactBID); err != nil {
		return fmt.Errorf("relation: failed to delete pair: %w", err)
	}
	return nil
}

// resolveReverseEdge builds the B→A edge for a new pair.
func (c *Coordinator) resolveReverseEdge(ctx context.Context, cat *catalog.Catalog, pairID, contactAID, contactBID, typeKey string, entry *catalog.RelationshipType, attrs PairAttrs, now time.Time) *types.RelationshipEdge {
	res, category := c.resolveReverse(ctx, cat, contactBID, typeKey, entry)

	edge := newEdge(pairID, contactBID, contactAID, res.Key, category, attrs, now)
	edge.IsGenderResolved = res.GenderResolved
	if res.GenderResolved {
		edge.OriginalType = typeKey
	}
	return edge
}

// resolveReverse resolves the reverse type key and its category. When the
// catalog entry is missing (type removed after edges were created), the
// forward type is reused as a generic symmetric label so existing data
// stays renderable.
func (c *Coordinator) resolveReverse(ctx context.Context, cat *catalog.Catalog, contactBID, typeKey string, entry *catalog.RelationshipType) (catalog.Resolution, types.Category) {
	if entry == nil {
		log.Printf("relation: type %q missing from catalog, reusing forward type for reverse", typeKey)
		return catalog.Resolution{Key: typeKey}, types.CategorySocial
	}

	res := catalog.ResolveReverse(entry, c.genderOf(ctx, contactBID))

	category := entry.Category
	if reverseEntry, ok := cat.Lookup(res.Key); ok {
		category = reverseEntry.Category
	}
	return res, category
}

// genderOf returns the gender of a contact, or unknown when the contact
// cannot be resolved. Stale contact references are an expected steady-state
// condition, not an error.
func (c *Coordinator) genderOf(ctx context.Context, contactID string) types.Gender {
	if c.contacts == nil {
		return types.GenderUnknown
	}
	contact, err := c.contacts.GetContact(ctx, contactID)
	if err != nil || contact == nil {
		return types.GenderUnknown
	}
	return contact.Gender
}

// newEdge constructs one direction of a pair with shared attributes.
func newEdge(pairID, fromID, toID, typeKey string, category types.Category, attrs PairAttrs, now time.Time) *types.RelationshipEdge {
	return &types.RelationshipEdge{
		ID:         "rel:" + uuid.NewString(),
		PairID:     pairID,
		ContactAID: fromID,
		ContactBID: toID,
		Type:       typeKey,
		Category:   category,
		Strength:   attrs.Strength,
		Status:     attrs.Status,
		StartDate:  attrs.StartDate,
		EndDate:    attrs.EndDate,
		IsMutual:   attrs.IsMutual,
		Notes:      attrs.Notes,
		Context:    attrs.Context,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// normalizeAttrs enforces the pair-attribute invariants: a missing status
// defaults to active, and an active pair carries no end date.
func normalizeAttrs(attrs *PairAttrs) {
	if attrs.Status == "" {
		attrs.Status = types.StatusActive
	}
	if attrs.Status == types.StatusActive {
		attrs.EndDate = nil
	}
}

// applyChanges applies non-nil pair-level changes to one edge direction.
func applyChanges(edge *types.RelationshipEdge, changes PairChanges) {
	if changes.Strength != nil {
		edge.Strength = *changes.Strength
	}
	if changes.Status != nil {
		edge.Status = *changes.Status
	}
	if changes.StartDate != nil {
		edge.StartDate = changes.StartDate
	}
	if changes.EndDate != nil {
		edge.EndDate = changes.EndDate
	}
	if changes.IsMutual != nil {
		edge.IsMutual = *changes.IsMutual
	}
	if changes.Notes != nil {
		edge.Notes = *changes.Notes
	}
	if changes.Context != nil {
		edge.Context = *changes.Context
	}
	if edge.Status == types.StatusActive {
		edge.EndDate = nil
	}
}
