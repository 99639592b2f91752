// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRank_NormalizedRange(t *testing.T) {
	g := New(true)
	g.SetWeight("a", "hub", 1)
	g.SetWeight("b", "hub", 1)
	g.SetWeight("c", "hub", 1)
	g.SetWeight("hub", "a", 1)
	g.AddVertex("lonely")

	pr := PageRank(g, DefaultDamping)
	require.Len(t, pr, 5)
	for id, v := range pr {
		assert.GreaterOrEqual(t, v, 0.0, id)
		assert.LessOrEqual(t, v, 1.0, id)
	}
	assert.InDelta(t, 1.0, pr["hub"], 1e-12, "unique max normalizes to 1")
	top := TopRanked(pr, 1)
	assert.Equal(t, "hub", top[0].ID)
}

func TestRawPageRank_SumsToOne(t *testing.T) {
	g := New(false)
	g.SetWeight("a", "b", 1)
	g.SetWeight("b", "c", 1)

	raw := RawPageRank(g, DefaultDamping)
	var sum float64
	for _, v := range raw {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Greater(t, raw["b"], raw["a"])
	assert.InDelta(t, raw["a"], raw["c"], 1e-6)
}

func TestRawPageRank_SparseMemory(t *testing.T) {
	// A 5000-vertex citation tree; a dense transition matrix alone would
	// take 200MB.
	const n = 5000
	g := New(true)
	for i := 1; i < n; i++ {
		g.SetWeight(fmt.Sprintf("W%05d", i), fmt.Sprintf("W%05d", (i-1)/2), 1)
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	raw := RawPageRank(g, DefaultDamping)
	runtime.ReadMemStats(&after)

	require.Len(t, raw, n)
	var sum float64
	for _, v := range raw {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Greater(t, raw["W00000"], raw["W04999"], "the root collects rank")
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
}

func TestPageRank_Empty(t *testing.T) {
	assert.Empty(t, PageRank(New(true), DefaultDamping))
}

func TestNormalize(t *testing.T) {
	got := Normalize(map[string]float64{"a": 2, "b": 4, "c": 3})
	assert.InDelta(t, 0.0, got["a"], 1e-12)
	assert.InDelta(t, 1.0, got["b"], 1e-12)
	assert.InDelta(t, 0.5, got["c"], 1e-12)

	flat := Normalize(map[string]float64{"a": 5, "b": 5})
	assert.Equal(t, 0.0, flat["a"])
	assert.Equal(t, 0.0, flat["b"])
}

func TestTopRanked_TiesByID(t *testing.T) {
	got := TopRanked(map[string]float64{"z": 1, "a": 1, "m": 2}, 2)
	assert.Equal(t, []Ranked{{ID: "m", Value: 2}, {ID: "a", Value: 1}}, got)
}
