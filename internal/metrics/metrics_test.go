// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citegraph/internal/graph"
)

func path4() *graph.Graph {
	g := graph.New(false)
	g.SetWeight("a", "b", 1)
	g.SetWeight("b", "c", 2)
	g.SetWeight("c", "d", 1)
	return g
}

func twoEdges() *graph.Graph {
	g := graph.New(false)
	g.SetWeight("a", "b", 1)
	g.SetWeight("c", "d", 1)
	return g
}

func TestBasic(t *testing.T) {
	s := Basic(path4())
	assert.Equal(t, 4, s.Vertices)
	assert.Equal(t, 3, s.Edges)
	assert.InDelta(t, 1.5, s.AvgDegree, 1e-12)
	assert.InDelta(t, 4.0/3.0, s.AvgWeight, 1e-12)

	assert.Equal(t, Stats{}, Basic(graph.New(false)))
}

func TestModularity(t *testing.T) {
	labels := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1}
	// 2m = 4, every k = 1: two edges of (1 - 1/4), over 4.
	assert.InDelta(t, 0.375, Modularity(twoEdges(), labels), 1e-12)

	split := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	assert.Equal(t, 0.0, Modularity(twoEdges(), split))
	assert.Equal(t, 0.0, Modularity(graph.New(false), labels))
}

func TestNewmanModularity(t *testing.T) {
	labels := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1}
	assert.InDelta(t, 0.5, NewmanModularity(twoEdges(), labels), 1e-9)

	one := map[string]int{"a": 0, "b": 0, "c": 0, "d": 0}
	assert.InDelta(t, 0.0, NewmanModularity(twoEdges(), one), 1e-9)
}

func TestConductance(t *testing.T) {
	g := path4()
	// vol A = vol B = 4, cut = 2.
	assert.InDelta(t, 0.5, Conductance(g, []string{"a", "b"}, []string{"c", "d"}), 1e-12)
	assert.Equal(t, 0.0, Conductance(g, nil, nil))
}

func TestDegreeAssortativity(t *testing.T) {
	assert.InDelta(t, -0.5, DegreeAssortativity(path4()), 1e-12)

	star := graph.New(false)
	star.SetWeight("hub", "x", 1)
	star.SetWeight("hub", "y", 1)
	star.SetWeight("hub", "z", 1)
	assert.Equal(t, 0.0, DegreeAssortativity(star), "constant endpoint degrees")

	single := graph.New(false)
	single.SetWeight("a", "b", 1)
	assert.Equal(t, 0.0, DegreeAssortativity(single))
}

func TestSummarize(t *testing.T) {
	g := graph.New(false)
	g.SetWeight("a", "b", 1)
	g.SetWeight("b", "c", 1)
	g.SetWeight("a", "c", 1)
	g.SetWeight("d", "e", 1)
	g.SetWeight("c", "d", 0.5)
	labels := map[string]int{"a": 0, "b": 0, "c": 0, "d": 1, "e": 1, "elsewhere": 7}

	s := Summarize(g, labels)
	assert.Equal(t, 5, s.Stats.Vertices)
	require.Len(t, s.Communities, 2)
	assert.Equal(t, 0, s.Communities[0].ID)
	assert.Equal(t, 3, s.Communities[0].Stats.Edges)
	assert.Len(t, s.Communities[0].TopPageRank, 3)
	assert.Equal(t, 1, s.Communities[1].Stats.Edges)

	require.NotNil(t, s.Largest)
	assert.Equal(t, 0, s.Largest.A)
	assert.Equal(t, 1, s.Largest.B)
	assert.Greater(t, s.Largest.Conductance, 0.0)
	assert.Greater(t, s.Modularity, 0.0)
	require.NotEmpty(t, s.TopPageRank)
	assert.Equal(t, "c", s.TopPageRank[0].ID)

	rows := s.Rows("lite")
	metricsSeen := map[string]bool{}
	for _, r := range rows {
		metricsSeen[r.Scope+"/"+r.Metric] = true
	}
	for _, want := range []string{
		"lite/vertices", "lite/modularity", "lite/newman_modularity", "lite/assortativity",
		"lite/pagerank", "lite/conductance", "comm_0/edges", "comm_1/pagerank",
	} {
		assert.True(t, metricsSeen[want], want)
	}
}

func TestSummarize_SingleCommunityHasNoPair(t *testing.T) {
	s := Summarize(twoEdges(), map[string]int{"a": 0, "b": 0, "c": 0, "d": 0})
	assert.Nil(t, s.Largest)
	assert.Len(t, s.Communities, 1)
}
