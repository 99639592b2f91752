// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func star(center string, leaves map[string]float64) *Graph {
	g := New(false)
	for leaf, w := range leaves {
		g.SetWeight(center, leaf, w)
	}
	return g
}

func TestTopKByScore(t *testing.T) {
	g := New(false)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddVertex(id)
	}
	scores := map[string]float64{"a": 0.1, "b": 0.9, "c": 0.9, "d": 0.5}
	assert.Equal(t, []string{"b", "c", "d"}, TopKByScore(g, scores, 3))
	assert.Len(t, TopKByScore(g, scores, 10), 4)
}

func TestDegreeCap_KeepsHeaviest(t *testing.T) {
	g := star("hub", map[string]float64{"x1": 0.9, "x2": 0.5, "x3": 0.7, "x4": 0.5})
	DegreeCap(g, 2)

	assert.Equal(t, []string{"x1", "x3"}, g.Neighbors("hub"))
	assert.Equal(t, 2, g.Size())
}

func TestDegreeCap_TiesByNeighbourID(t *testing.T) {
	g := star("a", map[string]float64{"d": 0.5, "b": 0.5, "c": 0.5})
	DegreeCap(g, 1)
	assert.Equal(t, []string{"b"}, g.Neighbors("a"))
}

func TestDegreeCap_SequentialRemoval(t *testing.T) {
	// "a" is visited first and drops a-c; "c" then has room for c-d.
	g := New(false)
	g.SetWeight("a", "b", 0.9)
	g.SetWeight("a", "c", 0.5)
	g.SetWeight("c", "d", 0.4)
	g.SetWeight("c", "e", 0.3)

	DegreeCap(g, 1)
	assert.Equal(t, []Edge{
		{From: "a", To: "b", Weight: 0.9},
		{From: "c", To: "d", Weight: 0.4},
	}, g.Edges())
}

func TestLite(t *testing.T) {
	g := New(false)
	g.SetWeight("a", "b", 0.9)
	g.SetWeight("a", "c", 0.3)
	g.SetWeight("b", "c", 0.5)
	g.SetWeight("c", "d", 0.8)
	scores := map[string]float64{"a": 0.9, "b": 0.8, "c": 0.7, "d": 0.1}

	lite := Lite(g, scores, 3, 0.4, 12)
	assert.Equal(t, []string{"a", "b", "c"}, lite.Vertices())
	assert.Equal(t, []Edge{
		{From: "a", To: "b", Weight: 0.9},
		{From: "b", To: "c", Weight: 0.5},
	}, lite.Edges())
	assert.Equal(t, 4, g.Size(), "input untouched")
}
