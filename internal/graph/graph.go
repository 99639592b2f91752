// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds the citation, semantic and fused paper graphs and the
// sparsified lite view used for inspection.
//
// Vertices are OpenAlex work ids. All listings (Vertices, Edges, Neighbors)
// come back in ascending id order so every downstream step is reproducible.
package graph

import (
	"sort"
)

// Edge is one weighted edge. For undirected graphs From < To.
type Edge struct {
	From   string  `json:"from" yaml:"from"`
	To     string  `json:"to" yaml:"to"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Graph is a weighted simple graph without self loops. Undirected edges are
// stored in both adjacency maps.
type Graph struct {
	directed bool
	adj      map[string]map[string]float64
	edges    int
}

// New returns an empty graph.
func New(directed bool) *Graph {
	return &Graph{directed: directed, adj: make(map[string]map[string]float64)}
}

// Directed reports whether edges have orientation.
func (g *Graph) Directed() bool { return g.directed }

// Order returns the number of vertices.
func (g *Graph) Order() int { return len(g.adj) }

// Size returns the number of edges.
func (g *Graph) Size() int { return g.edges }

// AddVertex adds id if absent.
func (g *Graph) AddVertex(id string) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[string]float64)
	}
}

// HasVertex reports whether id is a vertex.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.adj[id]
	return ok
}

// HasEdge reports whether u-v (u→v when directed) exists.
func (g *Graph) HasEdge(u, v string) bool {
	_, ok := g.adj[u][v]
	return ok
}

// Weight returns the weight of u-v.
func (g *Graph) Weight(u, v string) (float64, bool) {
	w, ok := g.adj[u][v]
	return w, ok
}

// SetWeight creates or overwrites u-v with weight w, adding missing
// endpoints. Self loops are ignored.
func (g *Graph) SetWeight(u, v string, w float64) {
	if u == v {
		return
	}
	g.AddVertex(u)
	g.AddVertex(v)
	if _, ok := g.adj[u][v]; !ok {
		g.edges++
	}
	g.adj[u][v] = w
	if !g.directed {
		g.adj[v][u] = w
	}
}

// AddWeight adds w to the weight of u-v, creating the edge at w when it is
// missing.
func (g *Graph) AddWeight(u, v string, w float64) {
	cur, _ := g.Weight(u, v)
	g.SetWeight(u, v, cur+w)
}

// RemoveEdge deletes u-v if present.
func (g *Graph) RemoveEdge(u, v string) {
	if _, ok := g.adj[u][v]; !ok {
		return
	}
	delete(g.adj[u], v)
	if !g.directed {
		delete(g.adj[v], u)
	}
	g.edges--
}

// Vertices returns all vertex ids in ascending order.
func (g *Graph) Vertices() []string {
	out := make([]string, 0, len(g.adj))
	for id := range g.adj {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the ids adjacent to id (successors when directed) in
// ascending order.
func (g *Graph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.adj[id]))
	for nb := range g.adj[id] {
		out = append(out, nb)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of incident edges of id. For directed graphs it
// counts both directions.
func (g *Graph) Degree(id string) int {
	if !g.directed {
		return len(g.adj[id])
	}
	d := len(g.adj[id])
	for u, nbs := range g.adj {
		if u == id {
			continue
		}
		if _, ok := nbs[id]; ok {
			d++
		}
	}
	return d
}

// Strength returns the sum of weights incident to id (outgoing when
// directed).
func (g *Graph) Strength(id string) float64 {
	var s float64
	for _, w := range g.adj[id] {
		s += w
	}
	return s
}

// Edges returns every edge once, sorted by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, u := range g.Vertices() {
		for _, v := range g.Neighbors(u) {
			if !g.directed && v < u {
				continue
			}
			out = append(out, Edge{From: u, To: v, Weight: g.adj[u][v]})
		}
	}
	return out
}

// TotalWeight returns the sum of all edge weights, each edge counted once.
func (g *Graph) TotalWeight() float64 {
	var s float64
	for _, e := range g.Edges() {
		s += e.Weight
	}
	return s
}

// Induced returns the subgraph on the given vertices, keeping every edge
// whose endpoints are both kept. Unknown ids are ignored.
func (g *Graph) Induced(ids []string) *Graph {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if g.HasVertex(id) {
			keep[id] = struct{}{}
		}
	}
	sub := New(g.directed)
	for id := range keep {
		sub.AddVertex(id)
	}
	for id := range keep {
		for nb, w := range g.adj[id] {
			if _, ok := keep[nb]; ok {
				sub.SetWeight(id, nb, w)
			}
		}
	}
	return sub
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	return g.Induced(g.Vertices())
}
