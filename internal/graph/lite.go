// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"sort"
)

// TopKByScore returns the ids of the k highest-scoring vertices of g, score
// descending, ties by ascending id. Vertices without a score rank as 0.
func TopKByScore(g *Graph, scores map[string]float64, k int) []string {
	ids := g.Vertices()
	sort.SliceStable(ids, func(i, j int) bool {
		return scores[ids[i]] > scores[ids[j]]
	})
	if k >= 0 && len(ids) > k {
		ids = ids[:k]
	}
	return ids
}

// Lite returns the sparsified view of g: the subgraph induced by the topK
// vertices by score, without edges lighter than minWeight, and with each
// vertex keeping at most degreeCap of its heaviest edges. A degreeCap of 0
// or less disables the cap.
func Lite(g *Graph, scores map[string]float64, topK int, minWeight float64, degreeCap int) *Graph {
	sub := g.Induced(TopKByScore(g, scores, topK))
	for _, e := range sub.Edges() {
		if e.Weight < minWeight {
			sub.RemoveEdge(e.From, e.To)
		}
	}
	if degreeCap > 0 {
		DegreeCap(sub, degreeCap)
	}
	return sub
}

// DegreeCap trims g in place. Vertices are visited in ascending id order;
// each keeps its m heaviest remaining edges (ties by neighbour id) and the
// rest are removed. Removals are visible to vertices visited later, so a
// vertex can end with fewer than m edges.
func DegreeCap(g *Graph, m int) {
	for _, u := range g.Vertices() {
		nbs := g.Neighbors(u)
		if len(nbs) <= m {
			continue
		}
		sort.SliceStable(nbs, func(i, j int) bool {
			wi, _ := g.Weight(u, nbs[i])
			wj, _ := g.Weight(u, nbs[j])
			return wi > wj
		})
		for _, v := range nbs[m:] {
			g.RemoveEdge(u, v)
		}
	}
}
