// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package community detects communities in the fused paper graph with
// weighted label propagation.
package community

import (
	"math/rand/v2"
	"sort"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/pkg/types"
)

// DefaultMaxIterations bounds the number of propagation rounds.
const DefaultMaxIterations = 10

// Labels maps vertex id to a dense community id in 0..k-1.
type Labels map[string]int

// Result is the outcome of one detection run.
type Result struct {
	Labels     Labels
	Iterations int
	Converged  bool
}

// Detect runs weighted label propagation over g, treated as undirected.
//
// Every vertex starts with its index in ascending id order as label. Each
// round visits the vertices in a seeded shuffle and moves each one to the
// label carrying the largest total edge weight among its neighbours, the
// lowest label winning ties. Rounds stop when nothing changes or after
// cfg.MaxIterations. Isolated vertices keep their own label.
func Detect(g *graph.Graph, cfg types.CommunityConfig) Result {
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	ids := g.Vertices()
	label := make(map[string]int, len(ids))
	for i, id := range ids {
		label[id] = i
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	order := append([]string(nil), ids...)

	res := Result{}
	for res.Iterations < maxIter {
		res.Iterations++
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		changes := 0
		for _, u := range order {
			best, ok := bestLabel(g, u, label)
			if !ok || best == label[u] {
				continue
			}
			label[u] = best
			changes++
		}
		if changes == 0 {
			res.Converged = true
			break
		}
	}

	res.Labels = relabel(ids, label)
	return res
}

// bestLabel returns the neighbour label with the largest summed weight.
func bestLabel(g *graph.Graph, u string, label map[string]int) (int, bool) {
	nbs := g.Neighbors(u)
	if len(nbs) == 0 {
		return 0, false
	}
	sums := make(map[int]float64, len(nbs))
	for _, v := range nbs {
		w, _ := g.Weight(u, v)
		sums[label[v]] += w
	}
	best, bestSum := -1, 0.0
	for l, s := range sums {
		if best == -1 || s > bestSum || (s == bestSum && l < best) {
			best, bestSum = l, s
		}
	}
	return best, true
}

// relabel maps raw labels onto 0..k-1 in order of first appearance over
// the sorted ids.
func relabel(ids []string, raw map[string]int) Labels {
	dense := make(map[int]int)
	out := make(Labels, len(ids))
	for _, id := range ids {
		l := raw[id]
		d, ok := dense[l]
		if !ok {
			d = len(dense)
			dense[l] = d
		}
		out[id] = d
	}
	return out
}

// Count returns the number of distinct communities.
func (l Labels) Count() int {
	seen := make(map[int]struct{})
	for _, c := range l {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// Members returns the sorted ids labelled c.
func (l Labels) Members(c int) []string {
	var out []string
	for id, lc := range l {
		if lc == c {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Sizes returns the number of members per community.
func (l Labels) Sizes() map[int]int {
	out := make(map[int]int)
	for _, c := range l {
		out[c]++
	}
	return out
}

// Largest returns community ids ordered by size descending, ties by
// ascending id, limited to n (all when n < 0).
func (l Labels) Largest(n int) []int {
	sizes := l.Sizes()
	ids := make([]int, 0, len(sizes))
	for c := range sizes {
		ids = append(ids, c)
	}
	sort.Slice(ids, func(i, j int) bool {
		if sizes[ids[i]] != sizes[ids[j]] {
			return sizes[ids[i]] > sizes[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n >= 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
