package layout

import (
	"sort"

	"github.com/kinshiphq/kinship/internal/graph"
)

// Grouping selects how professional nodes are bucketed.
type Grouping string

// Groupings over the professional graph. Both are pure re-groupings of the
// identical node list; no coordinate math is involved.
const (
	GroupByLevel   Grouping = "level"
	GroupByCompany Grouping = "company"
)

// UnknownCompany is the explicit bucket for contacts without a company.
const UnknownCompany = "Unknown Company"

// Group is one bucket of a professional network view.
type Group struct {
	Key   string        `json:"key"`
	Label string        `json:"label"`
	Level int           `json:"level,omitempty"`
	Nodes []*graph.Node `json:"nodes"`
}

// levelLabels names the hierarchy buckets top to bottom.
var levelLabels = map[int]string{
	-1: "Managers",
	0:  "Peers",
	1:  "Reports",
	2:  "External",
}

// Hierarchy buckets a professional graph's nodes either by level or by
// company. Bucket order is deterministic: levels ascend; companies sort
// alphabetically with the unknown bucket last.
func Hierarchy(g *graph.Graph, grouping Grouping) []Group {
	if grouping == GroupByCompany {
		return byCompany(g)
	}
	return byLevel(g)
}

func byLevel(g *graph.Graph) []Group {
	buckets := map[int][]*graph.Node{}
	for _, n := range g.Nodes {
		buckets[n.Level] = append(buckets[n.Level], n)
	}

	levels := make([]int, 0, len(buckets))
	for lvl := range buckets {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)

	groups := make([]Group, 0, len(levels))
	for _, lvl := range levels {
		label, ok := levelLabels[lvl]
		if !ok {
			label = "Other"
		}
		groups = append(groups, Group{
			Key:   label,
			Label: label,
			Level: lvl,
			Nodes: buckets[lvl],
		})
	}
	return groups
}

func byCompany(g *graph.Graph) []Group {
	buckets := map[string][]*graph.Node{}
	for _, n := range g.Nodes {
		company := n.Company
		if company == "" {
			company = UnknownCompany
		}
		buckets[company] = append(buckets[company], n)
	}

	companies := make([]string, 0, len(buckets))
	for company := range buckets {
		if company != UnknownCompany {
			companies = append(companies, company)
		}
	}
	sort.Strings(companies)
	if _, ok := buckets[UnknownCompany]; ok {
		companies = append(companies, UnknownCompany)
	}

	groups := make([]Group, 0, len(companies))
	for _, company := range companies {
		groups = append(groups, Group{
			Key:   company,
			Label: company,
			Nodes: buckets[company],
		})
	}
	return groups
}
