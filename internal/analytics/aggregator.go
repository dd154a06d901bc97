// Package analytics summarizes a relationship edge list into the counts and
// distributions the insights screens render. Summarize is pure and makes a
// single pass over its input.
package analytics

import (
	"sort"
	"time"

	"github.com/kinshiphq/kinship/pkg/types"
)

// NoCategory is the most-connected sentinel for an empty relationship set.
const NoCategory = "none"

// CategoryCount is one row of the top-categories list.
type CategoryCount struct {
	Category types.Category `json:"category"`
	Count    int            `json:"count"`
	Percent  float64        `json:"percent"`
}

// EdgeRef identifies an edge by id with its creation time, for the
// oldest/newest insights.
type EdgeRef struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the aggregate over a relationship set. All counts are per
// unordered pair: a stored relationship contributes once, not once per
// direction.
type Summary struct {
	TotalRelationships int `json:"total_relationships"`

	CategoryCounts   map[types.Category]int     `json:"category_counts"`
	CategoryPercents map[types.Category]float64 `json:"category_percents"`
	TopCategories    []CategoryCount            `json:"top_categories"`

	// Strength buckets: weak 1-3, moderate 4-6, strong 7-10.
	WeakCount     int `json:"weak_count"`
	ModerateCount int `json:"moderate_count"`
	StrongCount   int `json:"strong_count"`

	StatusCounts map[types.Status]int `json:"status_counts"`

	AverageStrength       float64 `json:"average_strength"`
	MostConnectedCategory string  `json:"most_connected_category"`

	OldestEdge *EdgeRef `json:"oldest_edge,omitempty"`
	NewestEdge *EdgeRef `json:"newest_edge,omitempty"`
}

// Summarize aggregates the edge list. Both directions of a pair may be
// present in the input; each unordered pair is counted once, using its
// first-seen direction. A zero-edge input is a valid empty state, not an
// error: every count is zero and the most-connected category is "none".
func Summarize(edges []*types.RelationshipEdge) *Summary {
	s := &Summary{
		CategoryCounts:        map[types.Category]int{},
		CategoryPercents:      map[types.Category]float64{},
		TopCategories:         []CategoryCount{},
		StatusCounts:          map[types.Status]int{},
		MostConnectedCategory: NoCategory,
	}
	for _, c := range types.Categories {
		s.CategoryCounts[c] = 0
		s.CategoryPercents[c] = 0
	}

	seen := map[string]bool{}
	strengthSum := 0

	for _, e := range edges {
		if e == nil {
			continue
		}
		key := e.PairKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		s.TotalRelationships++
		s.CategoryCounts[e.Category]++
		s.StatusCounts[e.Status]++

		// Unset strength averages as the mid-scale default without
		// being written back to the edge.
		strength := e.Strength
		if strength == 0 {
			strength = types.StrengthDefault
		}
		strengthSum += strength

		switch {
		case strength <= 3:
			s.WeakCount++
		case strength <= 6:
			s.ModerateCount++
		default:
			s.StrongCount++
		}

		if !e.CreatedAt.IsZero() {
			ref := &EdgeRef{ID: e.ID, Type: e.Type, CreatedAt: e.CreatedAt}
			if s.OldestEdge == nil || ref.CreatedAt.Before(s.OldestEdge.CreatedAt) {
				s.OldestEdge = ref
			}
			if s.NewestEdge == nil || ref.CreatedAt.After(s.NewestEdge.CreatedAt) {
				s.NewestEdge = ref
			}
		}
	}

	if s.TotalRelationships == 0 {
		return s
	}

	total := float64(s.TotalRelationships)
	for c, n := range s.CategoryCounts {
		s.CategoryPercents[c] = float64(n) / total * 100
	}
	s.AverageStrength = float64(strengthSum) / total

	// Top categories descend by count; ties keep declaration order.
	for _, c := range types.Categories {
		s.TopCategories = append(s.TopCategories, CategoryCount{
			Category: c,
			Count:    s.CategoryCounts[c],
			Percent:  s.CategoryPercents[c],
		})
	}
	sort.SliceStable(s.TopCategories, func(i, j int) bool {
		return s.TopCategories[i].Count > s.TopCategories[j].Count
	})
	s.MostConnectedCategory = string(s.TopCategories[0].Category)

	return s
}
