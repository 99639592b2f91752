// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics computes read-only structural diagnostics over a finished
// undirected graph and its community labelling.
package metrics

import (
	"math"
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	gcommunity "gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/citegraph/internal/graph"
)

// Stats are the basic size figures of a graph.
type Stats struct {
	Vertices  int     `json:"vertices" yaml:"vertices"`
	Edges     int     `json:"edges" yaml:"edges"`
	AvgDegree float64 `json:"avg_degree" yaml:"avg_degree"`
	AvgWeight float64 `json:"avg_weight" yaml:"avg_weight"`
}

// Basic returns vertex and edge counts, average degree 2m/n and mean edge
// weight.
func Basic(g *graph.Graph) Stats {
	n, m := g.Order(), g.Size()
	s := Stats{Vertices: n, Edges: m}
	if n > 0 {
		s.AvgDegree = 2 * float64(m) / float64(n)
	}
	if m > 0 {
		s.AvgWeight = g.TotalWeight() / float64(m)
	}
	return s
}

// Modularity returns
//
//	Q = (1/2m) · Σ_{edges uv, same community} (A_uv − k_u·k_v/2m)
//
// where k is the weighted degree and 2m twice the total edge weight. Each
// edge is counted once. Vertices missing from labels are in no community.
func Modularity(g *graph.Graph, labels map[string]int) float64 {
	m2 := 2 * g.TotalWeight()
	if m2 <= 0 {
		return 0
	}
	var q float64
	for _, e := range g.Edges() {
		cu, okU := labels[e.From]
		cv, okV := labels[e.To]
		if !okU || !okV || cu != cv {
			continue
		}
		q += e.Weight - g.Strength(e.From)*g.Strength(e.To)/m2
	}
	return q / m2
}

// NewmanModularity returns the standard weighted Newman-Girvan modularity
// at resolution 1, computed by gonum. Unlabelled vertices form singleton
// communities.
func NewmanModularity(g *graph.Graph, labels map[string]int) float64 {
	if g.Size() == 0 {
		return 0
	}
	ids := g.Vertices()
	pos := make(map[string]int64, len(ids))
	wg := simple.NewWeightedUndirectedGraph(0, 0)
	for i, id := range ids {
		pos[id] = int64(i)
		wg.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges() {
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(pos[e.From]), simple.Node(pos[e.To]), e.Weight))
	}

	groups := make(map[int][]gonumgraph.Node)
	var singles [][]gonumgraph.Node
	for _, id := range ids {
		c, ok := labels[id]
		if !ok {
			singles = append(singles, []gonumgraph.Node{simple.Node(pos[id])})
			continue
		}
		groups[c] = append(groups[c], simple.Node(pos[id]))
	}
	keys := make([]int, 0, len(groups))
	for c := range groups {
		keys = append(keys, c)
	}
	sort.Ints(keys)
	comms := make([][]gonumgraph.Node, 0, len(keys)+len(singles))
	for _, c := range keys {
		comms = append(comms, groups[c])
	}
	comms = append(comms, singles...)

	return gcommunity.Q(wg, comms, 1)
}

// Conductance returns cut(A,B) / max(1e-9, min(vol A, vol B)), where vol
// sums, over every edge, its weight once per endpoint inside the set.
func Conductance(g *graph.Graph, a, b []string) float64 {
	inA, inB := set(a), set(b)
	var cut, volA, volB float64
	for _, e := range g.Edges() {
		_, uA := inA[e.From]
		_, vA := inA[e.To]
		_, uB := inB[e.From]
		_, vB := inB[e.To]
		if uA {
			volA += e.Weight
		}
		if vA {
			volA += e.Weight
		}
		if uB {
			volB += e.Weight
		}
		if vB {
			volB += e.Weight
		}
		if (uA && vB) || (uB && vA) {
			cut += e.Weight
		}
	}
	return cut / math.Max(1e-9, math.Min(volA, volB))
}

// DegreeAssortativity returns the Pearson correlation between the
// unweighted degrees at the two ends of each edge. It is 0 for graphs with
// fewer than two edges or constant degrees.
func DegreeAssortativity(g *graph.Graph) float64 {
	edges := g.Edges()
	if len(edges) < 2 {
		return 0
	}
	xs := make([]float64, len(edges))
	ys := make([]float64, len(edges))
	for i, e := range edges {
		xs[i] = float64(g.Degree(e.From))
		ys[i] = float64(g.Degree(e.To))
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		// Zero variance on one side.
		return 0
	}
	return r
}

func set(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
