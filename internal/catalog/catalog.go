// Package catalog holds the relationship type catalog: immutable reference
// data mapping type keys to categories, display names and reverse-type
// resolution rules. The catalog is loaded once per session (built-in defaults,
// optionally overridden from a YAML file) and treated as a lookup table by the
// validator, the coordinator and the graph builder.
package catalog

import (
	"fmt"
	"sort"

	"github.com/kinshiphq/kinship/pkg/types"
)

// ReverseKind tags how a relationship type resolves its reverse.
type ReverseKind string

const (
	// ReverseSymmetric means the reverse is a single fixed key,
	// independent of anyone's gender (e.g. "manager" → "employee").
	ReverseSymmetric ReverseKind = "symmetric"

	// ReverseGendered means the reverse depends on the gender of the
	// contact the reverse edge describes, with a neutral fallback for
	// unknown gender (e.g. "parent" → "son"/"daughter", fallback "child").
	ReverseGendered ReverseKind = "gendered"
)

// Reverse describes how to derive the B→A type from an A→B type.
// Exactly one branch is populated depending on Kind.
type Reverse struct {
	Kind     ReverseKind             `yaml:"kind" json:"kind"`
	Key      string                  `yaml:"key,omitempty" json:"key,omitempty"`             // symmetric
	ByGender map[types.Gender]string `yaml:"by_gender,omitempty" json:"by_gender,omitempty"` // gendered
	Fallback string                  `yaml:"fallback,omitempty" json:"fallback,omitempty"`   // gendered, unknown gender
}

// RelationshipType is one catalog entry.
type RelationshipType struct {
	Key         string         `yaml:"key" json:"key"`
	Category    types.Category `yaml:"category" json:"category"`
	DisplayName string         `yaml:"display_name" json:"display_name"`
	Reverse     Reverse        `yaml:"reverse" json:"reverse"`
}

// Resolution is the outcome of a reverse lookup.
type Resolution struct {
	// Key is the resolved reverse type key.
	Key string

	// GenderResolved is true when a gendered branch or its fallback was
	// taken, i.e. whenever the result depended on (possibly absent)
	// gender data rather than a direct symmetric mapping.
	GenderResolved bool
}

// ResolveReverse resolves the reverse type key for an entry given the gender
// of the contact the reverse edge describes. It is a pure function; unknown
// gender takes the declared fallback.
func ResolveReverse(entry *RelationshipType, gender types.Gender) Resolution {
	if entry.Reverse.Kind == ReverseGendered {
		if key, ok := entry.Reverse.ByGender[gender]; ok && gender != types.GenderUnknown {
			return Resolution{Key: key, GenderResolved: true}
		}
		return Resolution{Key: entry.Reverse.Fallback, GenderResolved: true}
	}
	return Resolution{Key: entry.Reverse.Key}
}

// Catalog is an immutable set of relationship types keyed by type key.
// Declaration order is preserved; analytics uses it for tie-breaking.
type Catalog struct {
	entries map[string]*RelationshipType
	order   []string
}

// New builds a catalog from entries, preserving declaration order.
// Duplicate keys are rejected.
func New(entries []RelationshipType) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]*RelationshipType, len(entries)),
		order:   make([]string, 0, len(entries)),
	}
	for i := range entries {
		e := entries[i]
		if e.Key == "" {
			return nil, fmt.Errorf("catalog: entry %d has an empty key", i)
		}
		if !types.IsValidCategory(e.Category) {
			return nil, fmt.Errorf("catalog: type %q has unknown category %q", e.Key, e.Category)
		}
		if _, dup := c.entries[e.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate type key %q", e.Key)
		}
		c.entries[e.Key] = &e
		c.order = append(c.order, e.Key)
	}
	return c, nil
}

// Lookup returns the entry for a type key.
func (c *Catalog) Lookup(key string) (*RelationshipType, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Has reports whether the catalog contains the given type key.
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Types returns all entries in declaration order.
func (c *Catalog) Types() []*RelationshipType {
	out := make([]*RelationshipType, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.entries[key])
	}
	return out
}

// TypesByCategory returns the entries of one category, declaration order.
func (c *Catalog) TypesByCategory(cat types.Category) []*RelationshipType {
	var out []*RelationshipType
	for _, key := range c.order {
		if e := c.entries[key]; e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// CategoryRank returns the position of a category in the taxonomy's
// declaration order, used as an analytics tiebreak. Unknown categories sort
// last.
func (c *Catalog) CategoryRank(cat types.Category) int {
	for i, known := range types.Categories {
		if known == cat {
			return i
		}
	}
	return len(types.Categories)
}

// SortCategories sorts categories in place by taxonomy declaration order.
func (c *Catalog) SortCategories(cats []types.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		return c.CategoryRank(cats[i]) < c.CategoryRank(cats[j])
	})
}
