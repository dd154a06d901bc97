package types

import (
	"strings"
	"time"
)

// RelationshipEdge is one direction of a relationship pair. For every stored
// A→B edge there is exactly one logically-paired B→A edge sharing the same
// PairID, whose Type is the catalog-resolved reverse of this edge's Type.
// The coordinator creates, updates and deletes both directions atomically.
type RelationshipEdge struct {
	ID     string `json:"id"`      // Unique identifier (format: rel:uuid)
	PairID string `json:"pair_id"` // Shared by both directions of a pair

	ContactAID string `json:"contact_a_id"` // Looking from A...
	ContactBID string `json:"contact_b_id"` // ...at B

	Type     string   `json:"type"`     // Relationship type key, as seen from A
	Category Category `json:"category"` // Denormalized from the type for fast filtering

	// Pair-level attributes, identical on both directions.
	Strength  int        `json:"strength,omitempty"` // 1-10, 0 = unset
	Status    Status     `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"` // Only meaningful when Status != active
	IsMutual  bool       `json:"is_mutual"`          // UI hint, not a graph invariant
	Notes     string     `json:"notes,omitempty"`
	Context   string     `json:"context,omitempty"`

	// Audit trail, set when the coordinator rewrote the type based on gender.
	IsGenderResolved bool   `json:"is_gender_resolved,omitempty"`
	OriginalType     string `json:"original_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PairKey returns a direction-independent key for the edge's contact pair.
// Both directions of a pair produce the same key.
func (e *RelationshipEdge) PairKey() string {
	return PairKey(e.ContactAID, e.ContactBID)
}

// PairKey builds a direction-independent key for an unordered contact pair.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}

// Touches reports whether the edge references the given contact on either end.
func (e *RelationshipEdge) Touches(contactID string) bool {
	return e.ContactAID == contactID || e.ContactBID == contactID
}

// OtherEnd returns the contact on the far side of the edge from contactID,
// and false if the edge does not touch contactID at all.
func (e *RelationshipEdge) OtherEnd(contactID string) (string, bool) {
	switch contactID {
	case e.ContactAID:
		return e.ContactBID, true
	case e.ContactBID:
		return e.ContactAID, true
	}
	return "", false
}
