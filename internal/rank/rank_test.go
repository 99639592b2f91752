// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/citegraph/pkg/types"
)

func intPtr(n int) *int { return &n }

func TestCombine_Extremes(t *testing.T) {
	ones := Signals{1, 1, 1, 1, 1, 1}
	assert.InDelta(t, 1.0, Combine(ones), 1e-12)
	assert.Equal(t, 0.0, Combine(Signals{}))
	assert.InDelta(t, 0.45, Combine(Signals{Sim: 1}), 1e-12)
}

func TestScore_MissingSignalsAreZero(t *testing.T) {
	in := Inputs{
		Sim:      map[string]float64{"a": 1, "b": 0.5},
		PageRank: map[string]float64{"a": 1},
	}
	got := Score([]string{"a", "b", "c"}, in)
	assert.InDelta(t, 0.65, got["a"], 1e-12)
	assert.InDelta(t, 0.225, got["b"], 1e-12)
	assert.Equal(t, 0.0, got["c"])
}

func TestRecency(t *testing.T) {
	papers := []types.Paper{
		{ExternalID: "now", Year: 2025},
		{ExternalID: "old", Year: 2020},
		{ExternalID: "future", Year: 2027},
		{ExternalID: "", Year: 2025},
	}
	got := Recency(papers, 2025, 0.2)
	assert.Len(t, got, 3)
	assert.Equal(t, 1.0, got["now"])
	assert.Equal(t, 1.0, got["future"])
	assert.InDelta(t, math.Exp(-1), got["old"], 1e-12)
}

func TestLogCitations(t *testing.T) {
	papers := []types.Paper{
		{ExternalID: "none"},
		{ExternalID: "few", CitedByCount: intPtr(9)},
		{ExternalID: "many", CitedByCount: intPtr(99)},
	}
	got := LogCitations(papers)
	assert.Equal(t, 0.0, got["none"])
	assert.Equal(t, 1.0, got["many"])
	assert.InDelta(t, math.Log(10)/math.Log(100), got["few"], 1e-12)
}

func TestVenueAndBenchmark(t *testing.T) {
	papers := []types.Paper{
		{ExternalID: "a", Venue: " ACL ", MentionsBenchmark: true},
		{ExternalID: "b", Venue: "Journal of Things"},
		{ExternalID: "c"},
	}
	venue := VenueBonus(papers, DefaultVenues)
	assert.Equal(t, map[string]float64{"a": 1, "b": 0, "c": 0}, venue)
	assert.Equal(t, map[string]float64{"a": 1, "b": 0, "c": 0}, BenchmarkFlag(papers))
}

func TestSimilarity(t *testing.T) {
	got := Similarity(map[string][]float32{"x": {1, 0}, "y": {0, 2}}, []float32{3, 0})
	assert.InDelta(t, 1.0, got["x"], 1e-12)
	assert.InDelta(t, 0.0, got["y"], 1e-12)
}

func TestTopN(t *testing.T) {
	scores := map[string]float64{"a": 0.5, "b": 0.9, "c": 0.5, "d": 0.1}
	assert.Equal(t, []string{"b", "a", "c"}, TopN(scores, 3))
	assert.Len(t, TopN(scores, 10), 4)
	assert.Empty(t, TopN(scores, 0))
}

func TestDiversified_RoundRobin(t *testing.T) {
	scores := map[string]float64{"a1": 0.9, "a2": 0.8, "a3": 0.7, "b1": 0.85}
	labels := map[string]int{"a1": 0, "a2": 0, "a3": 0, "b1": 1}
	assert.Equal(t, []string{"a1", "b1", "a2", "a3"}, Diversified(scores, labels, 4))
}

func TestDiversified_Table(t *testing.T) {
	scores := map[string]float64{"a1": 0.9, "a2": 0.8, "b1": 0.85, "b2": 0.1, "u1": 0.95}
	labels := map[string]int{"a1": 0, "a2": 0, "b1": 1, "b2": 1}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"zero", 0, []string{}},
		{"one per bucket", 3, []string{"u1", "a1", "b1"}},
		{"second lap", 4, []string{"u1", "a1", "b1", "a2"}},
		{"exhausts all", 10, []string{"u1", "a1", "b1", "a2", "b2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diversified(scores, labels, tt.n))
		})
	}
}

func TestFilter(t *testing.T) {
	papers := map[string]types.Paper{
		"keep":     {Year: 2022, IsClassification: true, MentionsBenchmark: true},
		"old":      {Year: 2019, IsClassification: true, MentionsBenchmark: true},
		"noyear":   {IsClassification: true, MentionsBenchmark: true},
		"notclass": {Year: 2023, MentionsBenchmark: true},
		"nobench":  {Year: 2023, IsClassification: true},
		"keep2":    {Year: 2021, IsClassification: true, MentionsBenchmark: true},
	}
	ids := []string{"keep2", "old", "missing", "noyear", "notclass", "nobench", "keep"}
	c := CriteriaFrom(types.SelectionConfig{MinYear: 2021, RequireClassification: true, RequireBenchmark: true})

	assert.Equal(t, []string{"keep2", "keep"}, Filter(ids, papers, c))
	assert.Len(t, Filter(ids, papers, Criteria{}), 6)
}
