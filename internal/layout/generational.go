package layout

import (
	"sort"

	"github.com/kinshiphq/kinship/internal/graph"
)

// Spacing constants for the family tree grid.
const (
	generationSpacing = 140.0 // vertical distance between generation rows
	siblingSpacing    = 160.0 // horizontal distance between nodes in a row
)

// Generational assigns deterministic grid coordinates to a family graph.
// Nodes are grouped by generation; each generation is a horizontally
// centered row, rows are stacked top (oldest generation) to bottom. The
// result is a pure function of the generation assignment, per-generation
// node counts and canvas dimensions: identical inputs give bit-identical
// coordinates.
func Generational(g *graph.Graph, cfg Config) {
	cfg = cfg.normalized()
	if len(g.Nodes) == 0 {
		return
	}

	// Bucket nodes by generation, preserving build order within a row.
	rows := map[int][]*graph.Node{}
	for _, n := range g.Nodes {
		rows[n.Generation] = append(rows[n.Generation], n)
	}

	generations := make([]int, 0, len(rows))
	for gen := range rows {
		generations = append(generations, gen)
	}
	sort.Ints(generations)

	// Center the stack of rows vertically on the canvas.
	totalHeight := float64(len(generations)-1) * generationSpacing
	top := cfg.Height/2 - totalHeight/2
	if top < cfg.Padding {
		top = cfg.Padding
	}

	for i, gen := range generations {
		row := rows[gen]
		y := top + float64(i)*generationSpacing

		// Center the row as a block.
		rowWidth := float64(len(row)-1) * siblingSpacing
		left := cfg.Width/2 - rowWidth/2
		if left < cfg.Padding {
			left = cfg.Padding
		}

		for j, n := range row {
			n.X = left + float64(j)*siblingSpacing
			n.Y = y
		}
	}
}
