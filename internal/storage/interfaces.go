// Package storage defines the persistence interfaces for contacts and
// relationship pairs.
//
// The interfaces are small and focused so backends can implement them
// independently and callers can depend on just the slice they need. Both
// shipped backends (sqlite, postgres) implement the combined Store.
package storage

import (
	"context"

	"github.com/kinshiphq/kinship/pkg/types"
)

// ContactStore provides CRUD operations and pagination for contacts.
type ContactStore interface {
	// StoreContact creates or updates a contact (upsert semantics).
	StoreContact(ctx context.Context, contact *types.Contact) error

	// GetContact retrieves a contact by ID.
	// Returns ErrNotFound if the contact doesn't exist.
	GetContact(ctx context.Context, id string) (*types.Contact, error)

	// ListContacts retrieves contacts with pagination and filtering.
	ListContacts(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Contact], error)

	// DeleteContact removes a contact by ID. Relationship edges referencing
	// the contact are left in place; readers treat them as stale.
	// Returns ErrNotFound if the contact doesn't exist.
	DeleteContact(ctx context.Context, id string) error

	// Directory loads every contact as an id-keyed lookup, the shape the
	// graph builder consumes.
	Directory(ctx context.Context) (types.ContactDirectory, error)
}

// RelationshipStore persists relationship pairs. The pair operations are
// atomic: both directions are written in a single transaction, so a partial
// pair is never observable. It satisfies the coordinator's PairStore.
type RelationshipStore interface {
	// CreatePair inserts both directions of a new pair atomically.
	// Returns ErrPairExists if an active pair for the same unordered
	// contact pair already exists.
	CreatePair(ctx context.Context, edgeAToB, edgeBToA *types.RelationshipEdge) error

	// GetPair returns both directions for an unordered contact pair,
	// oriented so the first edge runs contactAID→contactBID.
	// Returns ErrNotFound when no pair exists.
	GetPair(ctx context.Context, contactAID, contactBID string) (*types.RelationshipEdge, *types.RelationshipEdge, error)

	// UpdatePair persists changes to both directions atomically.
	// Returns ErrNotFound if either direction is missing.
	UpdatePair(ctx context.Context, edgeAToB, edgeBToA *types.RelationshipEdge) error

	// DeletePair removes both directions for an unordered contact pair.
	// Returns ErrNotFound when no pair exists.
	DeletePair(ctx context.Context, contactAID, contactBID string) error

	// ListEdges retrieves relationship edges with pagination and filtering.
	ListEdges(ctx context.Context, opts ListOptions) (*PaginatedResult[types.RelationshipEdge], error)

	// EdgesForContact returns every edge touching the given contact, in
	// creation order. Used to feed graph builds for a focal contact.
	EdgesForContact(ctx context.Context, contactID string) ([]*types.RelationshipEdge, error)

	// AllEdges returns every stored edge in creation order, the input the
	// analytics aggregator summarizes.
	AllEdges(ctx context.Context) ([]*types.RelationshipEdge, error)
}

// Store is the combined backend interface the server wires together.
type Store interface {
	ContactStore
	RelationshipStore

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
