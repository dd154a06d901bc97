// Package graph converts a flat relationship list plus a contact directory,
// rooted at a focal contact, into a node/edge graph annotated for one of the
// three visualization modes. The builder assumes the coordinator's pair
// invariant holds but tolerates violations: orphan directions and stale
// contact references degrade the result instead of failing it.
package graph

import (
	"log"
	"sort"

	"github.com/kinshiphq/kinship/pkg/types"
)

// Mode selects the visualization the graph is annotated for.
type Mode string

// Graph modes.
const (
	ModeFamily       Mode = "family"
	ModeProfessional Mode = "professional"
	ModeSocial       Mode = "social"
)

// IsValidMode checks if the given mode is one of the three known ones.
func IsValidMode(m Mode) bool {
	return m == ModeFamily || m == ModeProfessional || m == ModeSocial
}

// Node is a derived graph node. It is constructed fresh on every build and
// mutated only by the layout pass that owns it.
type Node struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsRoot bool   `json:"is_root,omitempty"`

	Generation int            `json:"generation"`        // family mode
	Level      int            `json:"level"`             // professional mode
	Company    string         `json:"company,omitempty"` // professional mode
	Category   types.Category `json:"category,omitempty"`
	Strength   int            `json:"strength,omitempty"`

	// Parent/child connector back-references for family tree drawing.
	Parents  []string `json:"parents,omitempty"`
	Children []string `json:"children,omitempty"`

	// Layout-assigned coordinates.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a derived visual edge: one per stored relationship pair, labeled
// with the root-relative direction's type.
type Edge struct {
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	Label    string         `json:"label"`
	Strength int            `json:"strength,omitempty"`
	Category types.Category `json:"category"`
	Status   types.Status   `json:"status"`
	Mutual   bool           `json:"mutual"`
}

// Graph is the builder's output.
type Graph struct {
	Mode   Mode    `json:"mode"`
	RootID string  `json:"root_id"`
	Nodes  []*Node `json:"nodes"`
	Edges  []*Edge `json:"edges"`

	// DefaultedTypes lists type keys that fell through to the mode's
	// default annotation, so catalog gaps are observable rather than
	// silently swallowed.
	DefaultedTypes []string `json:"defaulted_types,omitempty"`
}

// generationDeltas maps a neighbor's type toward the root to the neighbor's
// generation offset. Unlisted types default to 0.
var generationDeltas = map[string]int{
	types.RelGrandparent:   -2,
	types.RelParent:        -1,
	types.RelFather:        -1,
	types.RelMother:        -1,
	types.RelUncle:         -1,
	types.RelAunt:          -1,
	types.RelSibling:       0,
	types.RelBrother:       0,
	types.RelSister:        0,
	types.RelCousin:        0,
	types.RelChild:         1,
	types.RelSon:           1,
	types.RelDaughter:      1,
	types.RelNephew:        1,
	types.RelNiece:         1,
	types.RelGrandchild:    2,
	types.RelGrandson:      2,
	types.RelGranddaughter: 2,
}

// connectorTypes marks the parent/child-class types that draw explicit tree
// connectors. Siblings and cousins render as same-row nodes without lines.
var connectorTypes = map[string]bool{
	types.RelGrandparent:   true,
	types.RelParent:        true,
	types.RelFather:        true,
	types.RelMother:        true,
	types.RelChild:         true,
	types.RelSon:           true,
	types.RelDaughter:      true,
	types.RelGrandchild:    true,
	types.RelGrandson:      true,
	types.RelGranddaughter: true,
}

// levelDeltas maps a neighbor's type toward the root to the professional
// level bucket. Unlisted types default to 0 (peer/colleague).
var levelDeltas = map[string]int{
	types.RelManager:         -1,
	types.RelColleague:       0,
	types.RelEmployee:        1,
	types.RelClient:          2,
	types.RelServiceProvider: 2,
}

// Build assembles the one-hop neighborhood graph of rootID. Family and
// professional modes restrict edges to their category; social mode takes
// everything. Empty inputs and an unknown root yield an empty graph, a
// normal UI state rather than an error.
func Build(rootID string, edges []*types.RelationshipEdge, contacts types.ContactDirectory, mode Mode) *Graph {
	g := &Graph{Mode: mode, RootID: rootID, Nodes: []*Node{}, Edges: []*Edge{}}

	root, ok := contacts[rootID]
	if !ok || len(contacts) == 0 {
		return g
	}

	// One-hop filter, plus the category restriction for non-social modes.
	pairs := collectPairs(rootID, edges, mode)
	if len(pairs) == 0 {
		// Still show the root alone; there is nothing to connect it to.
		g.Nodes = append(g.Nodes, &Node{ID: rootID, Name: root.Name, IsRoot: true})
		return g
	}

	rootNode := &Node{ID: rootID, Name: root.Name, IsRoot: true}
	g.Nodes = append(g.Nodes, rootNode)

	defaulted := map[string]bool{}

	for _, p := range pairs {
		neighbor, ok := contacts[p.neighborID]
		if !ok {
			// Stale reference: contact deleted while the edge lingers.
			continue
		}

		node := &Node{
			ID:       p.neighborID,
			Name:     neighbor.Name,
			Category: p.display.Category,
			Strength: p.display.Strength,
		}

		switch mode {
		case ModeFamily:
			annotateFamily(rootNode, node, p, defaulted)
		case ModeProfessional:
			node.Company = neighbor.Company
			annotateProfessional(node, p, defaulted)
		}

		g.Nodes = append(g.Nodes, node)
		g.Edges = append(g.Edges, &Edge{
			SourceID: rootID,
			TargetID: p.neighborID,
			Label:    p.displayLabel(),
			Strength: p.display.Strength,
			Category: p.display.Category,
			Status:   p.display.Status,
			Mutual:   p.display.IsMutual,
		})
	}

	for t := range defaulted {
		g.DefaultedTypes = append(g.DefaultedTypes, t)
	}
	sort.Strings(g.DefaultedTypes)
	if len(g.DefaultedTypes) > 0 {
		log.Printf("graph: %d relationship type(s) fell through to the %s default: %v",
			len(g.DefaultedTypes), mode, g.DefaultedTypes)
	}

	return g
}

// pair groups the surviving directions of one unordered contact pair.
type pair struct {
	neighborID string
	display    *types.RelationshipEdge // root→neighbor direction when present
	toward     *types.RelationshipEdge // neighbor→root direction when present
}

// displayLabel returns the root-relative direction's type, falling back to
// the only surviving direction for orphan edges.
func (p *pair) displayLabel() string {
	if p.display != nil {
		return p.display.Type
	}
	return p.toward.Type
}

// towardType returns the neighbor's type toward the root, used for
// generation/level annotation. Orphan pairs fall back to the display type.
func (p *pair) towardType() string {
	if p.toward != nil {
		return p.toward.Type
	}
	return p.display.Type
}

// collectPairs filters edges to the root's one-hop neighborhood, applies the
// mode's category restriction and deduplicates by unordered pair, keeping
// both directions when present. Pair order follows first appearance in the
// edge list, so identical inputs produce identical node ordering.
func collectPairs(rootID string, edges []*types.RelationshipEdge, mode Mode) []*pair {
	var modeCategory types.Category
	switch mode {
	case ModeFamily:
		modeCategory = types.CategoryFamily
	case ModeProfessional:
		modeCategory = types.CategoryProfessional
	}

	byKey := map[string]*pair{}
	var order []*pair

	for _, e := range edges {
		if e == nil || !e.Touches(rootID) {
			continue
		}
		if modeCategory != "" && e.Category != modeCategory {
			continue
		}
		neighborID, _ := e.OtherEnd(rootID)
		if neighborID == rootID {
			continue
		}

		key := e.PairKey()
		p, seen := byKey[key]
		if !seen {
			p = &pair{neighborID: neighborID}
			byKey[key] = p
			order = append(order, p)
		}
		if e.ContactAID == rootID {
			if p.display == nil {
				p.display = e
			}
		} else if p.toward == nil {
			p.toward = e
		}
	}

	// Orphan pairs keep their single surviving direction usable as the
	// display edge so strength/status still render.
	for _, p := range order {
		if p.display == nil {
			p.display = p.toward
			p.toward = nil
		}
	}
	return order
}

// annotateFamily assigns the neighbor's generation and wires parent/child
// connector back-references on both the root and the neighbor node.
func annotateFamily(root, node *Node, p *pair, defaulted map[string]bool) {
	toward := p.towardType()

	delta, known := generationDeltas[toward]
	if !known {
		defaulted[toward] = true
	}
	node.Generation = delta

	if !connectorTypes[toward] {
		return
	}
	if delta < 0 {
		// Neighbor is in an ancestor generation of the root.
		node.Children = append(node.Children, root.ID)
		root.Parents = append(root.Parents, node.ID)
	} else if delta > 0 {
		node.Parents = append(node.Parents, root.ID)
		root.Children = append(root.Children, node.ID)
	}
}

// annotateProfessional assigns the neighbor's level bucket.
func annotateProfessional(node *Node, p *pair, defaulted map[string]bool) {
	toward := p.towardType()

	level, known := levelDeltas[toward]
	if !known {
		defaulted[toward] = true
	}
	node.Level = level
}

