// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"fmt"
	"sort"

	"github.com/pdiddy/citegraph/internal/graph"
)

// Summary sizes.
const (
	GraphPageRankTop     = 10
	CommunityPageRankTop = 5
)

// Row is one line of the metrics table. Key is empty for scalar metrics
// and holds the vertex id for ranked entries.
type Row struct {
	Scope  string  `json:"scope" yaml:"scope"`
	Metric string  `json:"metric" yaml:"metric"`
	Key    string  `json:"key,omitempty" yaml:"key,omitempty"`
	Value  float64 `json:"value" yaml:"value"`
}

// CommunityStats describes one community's induced subgraph.
type CommunityStats struct {
	ID          int            `json:"id" yaml:"id"`
	Stats       Stats          `json:"stats" yaml:"stats"`
	TopPageRank []graph.Ranked `json:"top_pagerank" yaml:"top_pagerank"`
}

// Pair is the conductance between two communities.
type Pair struct {
	A           int     `json:"a" yaml:"a"`
	B           int     `json:"b" yaml:"b"`
	Conductance float64 `json:"conductance" yaml:"conductance"`
}

// Summary collects the diagnostics of one graph.
type Summary struct {
	Stats            Stats            `json:"stats" yaml:"stats"`
	Modularity       float64          `json:"modularity" yaml:"modularity"`
	NewmanModularity float64          `json:"newman_modularity" yaml:"newman_modularity"`
	Assortativity    float64          `json:"assortativity" yaml:"assortativity"`
	TopPageRank      []graph.Ranked   `json:"top_pagerank" yaml:"top_pagerank"`
	Communities      []CommunityStats `json:"communities" yaml:"communities"`
	Largest          *Pair            `json:"largest_pair,omitempty" yaml:"largest_pair,omitempty"`
}

// Summarize computes the metrics of g under labels. Communities are taken
// among g's vertices in ascending id order; the conductance pair is the two
// communities with the most vertices in g, ties by lower id.
func Summarize(g *graph.Graph, labels map[string]int) Summary {
	s := Summary{
		Stats:            Basic(g),
		Modularity:       Modularity(g, labels),
		NewmanModularity: NewmanModularity(g, labels),
		Assortativity:    DegreeAssortativity(g),
		TopPageRank:      graph.TopRanked(graph.RawPageRank(g, graph.DefaultDamping), GraphPageRankTop),
	}

	members := make(map[int][]string)
	for _, id := range g.Vertices() {
		if c, ok := labels[id]; ok {
			members[c] = append(members[c], id)
		}
	}
	ids := make([]int, 0, len(members))
	for c := range members {
		ids = append(ids, c)
	}
	sort.Ints(ids)

	for _, c := range ids {
		sub := g.Induced(members[c])
		s.Communities = append(s.Communities, CommunityStats{
			ID:          c,
			Stats:       Basic(sub),
			TopPageRank: graph.TopRanked(graph.RawPageRank(sub, graph.DefaultDamping), CommunityPageRankTop),
		})
	}

	if len(ids) >= 2 {
		bySize := append([]int(nil), ids...)
		sort.SliceStable(bySize, func(i, j int) bool {
			return len(members[bySize[i]]) > len(members[bySize[j]])
		})
		a, b := bySize[0], bySize[1]
		s.Largest = &Pair{A: a, B: b, Conductance: Conductance(g, members[a], members[b])}
	}
	return s
}

// Rows flattens the summary into the metrics table, scoped "graph" for
// whole-graph figures and "comm_<id>" for per-community ones.
func (s Summary) Rows(scope string) []Row {
	rows := []Row{
		{Scope: scope, Metric: "vertices", Value: float64(s.Stats.Vertices)},
		{Scope: scope, Metric: "edges", Value: float64(s.Stats.Edges)},
		{Scope: scope, Metric: "avg_degree", Value: s.Stats.AvgDegree},
		{Scope: scope, Metric: "avg_weight", Value: s.Stats.AvgWeight},
		{Scope: scope, Metric: "modularity", Value: s.Modularity},
		{Scope: scope, Metric: "newman_modularity", Value: s.NewmanModularity},
		{Scope: scope, Metric: "assortativity", Value: s.Assortativity},
	}
	for _, r := range s.TopPageRank {
		rows = append(rows, Row{Scope: scope, Metric: "pagerank", Key: r.ID, Value: r.Value})
	}
	if s.Largest != nil {
		rows = append(rows, Row{
			Scope:  scope,
			Metric: "conductance",
			Key:    fmt.Sprintf("comm_%d|comm_%d", s.Largest.A, s.Largest.B),
			Value:  s.Largest.Conductance,
		})
	}
	for _, c := range s.Communities {
		cs := fmt.Sprintf("comm_%d", c.ID)
		rows = append(rows,
			Row{Scope: cs, Metric: "vertices", Value: float64(c.Stats.Vertices)},
			Row{Scope: cs, Metric: "edges", Value: float64(c.Stats.Edges)},
			Row{Scope: cs, Metric: "avg_degree", Value: c.Stats.AvgDegree},
			Row{Scope: cs, Metric: "avg_weight", Value: c.Stats.AvgWeight},
		)
		for _, r := range c.TopPageRank {
			rows = append(rows, Row{Scope: cs, Metric: "pagerank", Key: r.ID, Value: r.Value})
		}
	}
	return rows
}
