// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// DefaultDamping is the PageRank damping factor used by ranking.
const DefaultDamping = 0.85

// pageRankTol is the convergence tolerance passed to gonum.
const pageRankTol = 1e-8

// RawPageRank runs unweighted PageRank over g. Undirected edges count in
// both directions. The result sums to 1 over the vertices of g.
func RawPageRank(g *Graph, damping float64) map[string]float64 {
	ids := g.Vertices()
	if len(ids) == 0 {
		return map[string]float64{}
	}
	pos := make(map[string]int64, len(ids))
	dg := simple.NewDirectedGraph()
	for i, id := range ids {
		pos[id] = int64(i)
		dg.AddNode(simple.Node(i))
	}
	for _, u := range ids {
		for _, v := range g.Neighbors(u) {
			dg.SetEdge(dg.NewEdge(simple.Node(pos[u]), simple.Node(pos[v])))
		}
	}

	ranks := network.PageRankSparse(dg, damping, pageRankTol)
	out := make(map[string]float64, len(ids))
	for i, id := range ids {
		out[id] = ranks[int64(i)]
	}
	return out
}

// PageRank returns PageRank scores min-max normalized to [0,1].
func PageRank(g *Graph, damping float64) map[string]float64 {
	return Normalize(RawPageRank(g, damping))
}

// Normalize maps values linearly onto [0,1] using (v-min)/max(1e-9, max-min).
// When all values are equal every result is 0.
func Normalize(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	if len(m) == 0 {
		return out
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range m {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := math.Max(1e-9, hi-lo)
	for k, v := range m {
		out[k] = (v - lo) / span
	}
	return out
}

// Ranked is one (id, value) pair.
type Ranked struct {
	ID    string  `json:"id" yaml:"id"`
	Value float64 `json:"value" yaml:"value"`
}

// TopRanked returns the k largest entries of m, value descending, ties by
// ascending id.
func TopRanked(m map[string]float64, k int) []Ranked {
	out := make([]Ranked, 0, len(m))
	for id, v := range m {
		out = append(out, Ranked{ID: id, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].ID < out[j].ID
	})
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
