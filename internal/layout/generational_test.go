package layout

import (
	"testing"

	"github.com/kinshiphq/kinship/internal/graph"
)

func familyGraph() *graph.Graph {
	return &graph.Graph{
		Mode:   graph.ModeFamily,
		RootID: "contact:root",
		Nodes: []*graph.Node{
			{ID: "contact:root", Name: "Root", IsRoot: true, Generation: 0},
			{ID: "contact:mom", Name: "Mom", Generation: -1},
			{ID: "contact:dad", Name: "Dad", Generation: -1},
			{ID: "contact:sis", Name: "Sis", Generation: 0},
			{ID: "contact:kid", Name: "Kid", Generation: 1},
		},
	}
}

func TestGenerational_RowsStackByGeneration(t *testing.T) {
	g := familyGraph()
	Generational(g, Config{Width: 1200, Height: 800, Padding: 40})

	byID := map[string]*graph.Node{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	if byID["contact:mom"].Y != byID["contact:dad"].Y {
		t.Error("same-generation nodes must share a row")
	}
	if byID["contact:mom"].Y >= byID["contact:root"].Y {
		t.Error("ancestor row must sit above the root's row")
	}
	if byID["contact:kid"].Y <= byID["contact:root"].Y {
		t.Error("descendant row must sit below the root's row")
	}
	if byID["contact:root"].Y != byID["contact:sis"].Y {
		t.Error("siblings share the root's row")
	}

	// Rows are spaced by the fixed generation gap.
	if gap := byID["contact:root"].Y - byID["contact:mom"].Y; gap != generationSpacing {
		t.Errorf("row gap = %v, want %v", gap, generationSpacing)
	}
}

func TestGenerational_RowsAreCentered(t *testing.T) {
	g := familyGraph()
	cfg := Config{Width: 1200, Height: 800, Padding: 40}
	Generational(g, cfg)

	byID := map[string]*graph.Node{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	// The two-node row centers around the canvas midline.
	mid := (byID["contact:mom"].X + byID["contact:dad"].X) / 2
	if mid != cfg.Width/2 {
		t.Errorf("row midpoint = %v, want %v", mid, cfg.Width/2)
	}
	if byID["contact:dad"].X-byID["contact:mom"].X != siblingSpacing {
		t.Error("row nodes must be spaced by the sibling gap")
	}
	// A single-node row lands exactly on the midline.
	if byID["contact:kid"].X != cfg.Width/2 {
		t.Errorf("lone row node X = %v, want %v", byID["contact:kid"].X, cfg.Width/2)
	}
}

func TestGenerational_BitIdenticalAcrossRuns(t *testing.T) {
	cfg := Config{Width: 1280, Height: 720, Padding: 32}

	first := familyGraph()
	Generational(first, cfg)
	second := familyGraph()
	Generational(second, cfg)

	for i := range first.Nodes {
		a, b := first.Nodes[i], second.Nodes[i]
		if a.X != b.X || a.Y != b.Y {
			t.Errorf("node %s differs across runs: (%v,%v) vs (%v,%v)", a.ID, a.X, a.Y, b.X, b.Y)
		}
	}
}

func TestGenerational_PaddingFloor(t *testing.T) {
	// A tall stack on a short canvas must not start above the padding.
	g := &graph.Graph{Nodes: []*graph.Node{
		{ID: "a", Generation: -2},
		{ID: "b", Generation: -1},
		{ID: "c", Generation: 0},
		{ID: "d", Generation: 1},
		{ID: "e", Generation: 2},
	}}
	cfg := Config{Width: 400, Height: 300, Padding: 40}
	Generational(g, cfg)

	for _, n := range g.Nodes {
		if n.Y < cfg.Padding {
			t.Errorf("node %s at Y=%v is above the padding floor", n.ID, n.Y)
		}
	}
}

func TestGenerational_EmptyGraphIsNoop(t *testing.T) {
	g := &graph.Graph{}
	Generational(g, Config{})
}

func TestGenerational_ZeroConfigUsesDefaults(t *testing.T) {
	g := &graph.Graph{Nodes: []*graph.Node{{ID: "a"}}}
	Generational(g, Config{})
	if g.Nodes[0].X != DefaultConfig.Width/2 {
		t.Errorf("lone node X = %v, want default canvas midline", g.Nodes[0].X)
	}
}
