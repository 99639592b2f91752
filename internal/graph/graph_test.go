// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraph_UndirectedEdges(t *testing.T) {
	g := New(false)
	g.SetWeight("b", "a", 0.5)
	g.AddWeight("a", "b", 0.25)
	g.SetWeight("c", "c", 1)

	w, ok := g.Weight("b", "a")
	assert.True(t, ok)
	assert.InDelta(t, 0.75, w, 1e-12)
	assert.Equal(t, 1, g.Size())
	assert.Equal(t, 2, g.Order(), "self loop adds nothing")
	assert.Equal(t, []Edge{{From: "a", To: "b", Weight: 0.75}}, g.Edges())
	assert.Equal(t, 1, g.Degree("a"))

	g.RemoveEdge("a", "b")
	assert.False(t, g.HasEdge("b", "a"))
	assert.Equal(t, 0, g.Size())
	assert.Equal(t, []string{"a", "b"}, g.Vertices())
}

func TestGraph_DirectedEdges(t *testing.T) {
	g := New(true)
	g.SetWeight("b", "a", 1)
	g.SetWeight("a", "b", 1)
	g.SetWeight("c", "a", 1)

	assert.Equal(t, 3, g.Size())
	assert.Equal(t, []Edge{
		{From: "a", To: "b", Weight: 1},
		{From: "b", To: "a", Weight: 1},
		{From: "c", To: "a", Weight: 1},
	}, g.Edges())
	assert.Equal(t, 3, g.Degree("a"))
	assert.Equal(t, []string{"b"}, g.Neighbors("a"))
}

func TestGraph_Induced(t *testing.T) {
	g := New(false)
	g.SetWeight("a", "b", 1)
	g.SetWeight("b", "c", 2)
	g.SetWeight("a", "c", 3)
	g.AddVertex("d")

	sub := g.Induced([]string{"a", "c", "d", "zzz"})
	assert.Equal(t, []string{"a", "c", "d"}, sub.Vertices())
	assert.Equal(t, []Edge{{From: "a", To: "c", Weight: 3}}, sub.Edges())
	assert.Equal(t, 3, g.Size(), "source graph untouched")
}
