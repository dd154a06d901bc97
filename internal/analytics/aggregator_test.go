package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinshiphq/kinship/internal/analytics"
	"github.com/kinshiphq/kinship/pkg/types"
)

func edge(id, a, b string, cat types.Category, strength int, created time.Time) *types.RelationshipEdge {
	return &types.RelationshipEdge{
		ID:         id,
		ContactAID: a,
		ContactBID: b,
		Type:       "friend",
		Category:   cat,
		Strength:   strength,
		Status:     types.StatusActive,
		CreatedAt:  created,
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	s := analytics.Summarize(nil)

	assert.Equal(t, 0, s.TotalRelationships)
	assert.Equal(t, analytics.NoCategory, s.MostConnectedCategory)
	assert.Empty(t, s.TopCategories)
	assert.Nil(t, s.OldestEdge)
	assert.Nil(t, s.NewestEdge)
	assert.Zero(t, s.AverageStrength)

	// Every category is present with a zero count, so renderers never
	// need to special-case missing keys.
	for _, c := range types.Categories {
		count, ok := s.CategoryCounts[c]
		assert.True(t, ok)
		assert.Equal(t, 0, count)
		assert.Equal(t, 0.0, s.CategoryPercents[c])
	}
}

func TestSummarize_CountsPerUnorderedPair(t *testing.T) {
	now := time.Now()
	// Both directions of the same stored pair.
	edges := []*types.RelationshipEdge{
		edge("rel:1", "a", "b", types.CategorySocial, 7, now),
		edge("rel:2", "b", "a", types.CategorySocial, 7, now),
		edge("rel:3", "a", "c", types.CategoryFamily, 2, now),
	}

	s := analytics.Summarize(edges)

	assert.Equal(t, 2, s.TotalRelationships, "each unordered pair counts once")
	assert.Equal(t, 1, s.CategoryCounts[types.CategorySocial])
	assert.Equal(t, 1, s.CategoryCounts[types.CategoryFamily])
}

func TestSummarize_Percentages(t *testing.T) {
	now := time.Now()
	edges := []*types.RelationshipEdge{
		edge("rel:1", "a", "b", types.CategoryFamily, 5, now),
		edge("rel:2", "a", "c", types.CategoryFamily, 5, now),
		edge("rel:3", "a", "d", types.CategorySocial, 5, now),
		edge("rel:4", "a", "e", types.CategoryRomantic, 5, now),
	}

	s := analytics.Summarize(edges)

	assert.Equal(t, 4, s.TotalRelationships)
	assert.InDelta(t, 50.0, s.CategoryPercents[types.CategoryFamily], 1e-9)
	assert.InDelta(t, 25.0, s.CategoryPercents[types.CategorySocial], 1e-9)
	assert.InDelta(t, 0.0, s.CategoryPercents[types.CategoryProfessional], 1e-9)

	// The family+professional+social+romantic counts always sum to the total.
	sum := 0
	for _, c := range types.Categories {
		sum += s.CategoryCounts[c]
	}
	assert.Equal(t, s.TotalRelationships, sum)
}

func TestSummarize_StrengthBuckets(t *testing.T) {
	now := time.Now()
	edges := []*types.RelationshipEdge{
		edge("rel:1", "a", "b", types.CategorySocial, 1, now),
		edge("rel:2", "a", "c", types.CategorySocial, 3, now),
		edge("rel:3", "a", "d", types.CategorySocial, 4, now),
		edge("rel:4", "a", "e", types.CategorySocial, 6, now),
		edge("rel:5", "a", "f", types.CategorySocial, 7, now),
		edge("rel:6", "a", "g", types.CategorySocial, 10, now),
	}

	s := analytics.Summarize(edges)

	assert.Equal(t, 2, s.WeakCount)
	assert.Equal(t, 2, s.ModerateCount)
	assert.Equal(t, 2, s.StrongCount)
	assert.InDelta(t, 31.0/6.0, s.AverageStrength, 1e-9)
}

func TestSummarize_UnsetStrengthAveragesAsDefault(t *testing.T) {
	now := time.Now()
	unset := edge("rel:1", "a", "b", types.CategorySocial, 0, now)
	edges := []*types.RelationshipEdge{
		unset,
		edge("rel:2", "a", "c", types.CategorySocial, 7, now),
	}

	s := analytics.Summarize(edges)

	assert.InDelta(t, 6.0, s.AverageStrength, 1e-9, "unset averages as the mid-scale default")
	assert.Equal(t, 1, s.ModerateCount, "the default lands in the moderate bucket")
	assert.Equal(t, 0, unset.Strength, "the default must never be written back")
}

func TestSummarize_TopCategoriesTiebreakByDeclarationOrder(t *testing.T) {
	now := time.Now()
	// social and romantic tie at 1; family and professional tie at 0.
	edges := []*types.RelationshipEdge{
		edge("rel:1", "a", "b", types.CategoryRomantic, 5, now),
		edge("rel:2", "a", "c", types.CategorySocial, 5, now),
	}

	s := analytics.Summarize(edges)

	require.Len(t, s.TopCategories, 4)
	assert.Equal(t, types.CategorySocial, s.TopCategories[0].Category,
		"ties resolve by taxonomy declaration order")
	assert.Equal(t, types.CategoryRomantic, s.TopCategories[1].Category)
	assert.Equal(t, types.CategoryFamily, s.TopCategories[2].Category)
	assert.Equal(t, types.CategoryProfessional, s.TopCategories[3].Category)
	assert.Equal(t, string(types.CategorySocial), s.MostConnectedCategory)
}

func TestSummarize_StatusCounts(t *testing.T) {
	now := time.Now()
	a := edge("rel:1", "a", "b", types.CategorySocial, 5, now)
	b := edge("rel:2", "a", "c", types.CategorySocial, 5, now)
	b.Status = types.StatusEnded

	s := analytics.Summarize([]*types.RelationshipEdge{a, b})

	assert.Equal(t, 1, s.StatusCounts[types.StatusActive])
	assert.Equal(t, 1, s.StatusCounts[types.StatusEnded])
}

func TestSummarize_OldestAndNewest(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	edges := []*types.RelationshipEdge{
		edge("rel:mid", "a", "b", types.CategorySocial, 5, base.AddDate(0, 1, 0)),
		edge("rel:old", "a", "c", types.CategorySocial, 5, base),
		edge("rel:new", "a", "d", types.CategorySocial, 5, base.AddDate(0, 2, 0)),
		// Zero timestamps never win oldest.
		edge("rel:zero", "a", "e", types.CategorySocial, 5, time.Time{}),
	}

	s := analytics.Summarize(edges)

	require.NotNil(t, s.OldestEdge)
	require.NotNil(t, s.NewestEdge)
	assert.Equal(t, "rel:old", s.OldestEdge.ID)
	assert.Equal(t, "rel:new", s.NewestEdge.ID)
}

func TestSummarize_SkipsNilEdges(t *testing.T) {
	now := time.Now()
	s := analytics.Summarize([]*types.RelationshipEdge{
		nil,
		edge("rel:1", "a", "b", types.CategorySocial, 5, now),
		nil,
	})
	assert.Equal(t, 1, s.TotalRelationships)
}
