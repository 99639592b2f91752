// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_QueryExcludesSelf(t *testing.T) {
	ix := New(1)
	require.NoError(t, ix.Add("a", []float32{1, 0}))
	require.NoError(t, ix.Add("b", []float32{0.9, 0.1}))
	require.NoError(t, ix.Add("c", []float32{0, 1}))

	got, err := ix.Query([]float32{1, 0}, 2, "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.InDelta(t, 0.9/math.Sqrt(0.82), got[0].Similarity, 1e-6)
	assert.InDelta(t, 0.0, got[1].Similarity, 1e-9)
}

func TestIndex_TiesOrderedByID(t *testing.T) {
	ix := New(1)
	for _, id := range []string{"d", "b", "c"} {
		require.NoError(t, ix.Add(id, []float32{1, 1}))
	}
	got, err := ix.Query([]float32{1, 1}, 3, "")
	require.NoError(t, err)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"b", "c", "d"}, ids)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ix := New(1)
	require.NoError(t, ix.Add("a", []float32{1, 0, 0}))

	err := ix.Add("b", []float32{1, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = ix.Query([]float32{1, 0}, 1, "")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 3, ix.Dim())
}

func TestIndex_RejectsZeroVector(t *testing.T) {
	ix := New(1)
	assert.ErrorIs(t, ix.Add("z", []float32{0, 0}), ErrZeroVector)
	assert.Equal(t, 0, ix.Len())
	assert.Equal(t, 0, ix.Dim())
}

func TestIndex_EmptyAndZeroK(t *testing.T) {
	ix := New(1)
	got, err := ix.Query([]float32{1}, 5, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, ix.Add("a", []float32{1}))
	got, err = ix.Query([]float32{1}, 0, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_StableAcrossBuilds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vecs := make(map[string][]float32)
	var ids []string
	for i := range 150 {
		id := fmt.Sprintf("W%03d", i)
		v := make([]float32, 8)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		vecs[id] = v
		ids = append(ids, id)
	}

	build := func() *Index {
		ix := New(42)
		for _, id := range ids {
			require.NoError(t, ix.Add(id, vecs[id]))
		}
		return ix
	}
	a, b := build(), build()
	for _, id := range ids[:20] {
		na, err := a.Query(vecs[id], 10, id)
		require.NoError(t, err)
		nb, err := b.Query(vecs[id], 10, id)
		require.NoError(t, err)
		assert.Equal(t, na, nb, id)
		for i := 1; i < len(na); i++ {
			assert.GreaterOrEqual(t, na[i-1].Similarity, na[i].Similarity)
		}
		for _, n := range na {
			assert.NotEqual(t, id, n.ID)
		}
	}
}

func TestIndex_RecallOnSmallCorpus(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ix := New(42)
	vecs := make(map[string][]float32)
	for i := range 100 {
		id := fmt.Sprintf("P%03d", i)
		v := []float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}
		vecs[id] = v
		require.NoError(t, ix.Add(id, v))
	}

	q := vecs["P010"]
	var bestID string
	best := -2.0
	for id, v := range vecs {
		if id == "P010" {
			continue
		}
		if s := Cosine(q, v); s > best || (s == best && id < bestID) {
			best, bestID = s, id
		}
	}
	got, err := ix.Query(q, 5, "P010")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, bestID, got[0].ID)
}

func TestIndex_RecallAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	vecs := make(map[string][]float32)
	var ids []string
	ix := New(42)
	for i := range 150 {
		id := fmt.Sprintf("W%03d", i)
		v := make([]float32, 8)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		vecs[id] = v
		ids = append(ids, id)
		require.NoError(t, ix.Add(id, v))
	}

	const k = 10
	var found, total int
	for _, id := range ids {
		exact := make([]Neighbor, 0, len(ids)-1)
		for _, other := range ids {
			if other != id {
				exact = append(exact, Neighbor{ID: other, Similarity: Cosine(vecs[id], vecs[other])})
			}
		}
		sort.Slice(exact, func(i, j int) bool {
			if exact[i].Similarity != exact[j].Similarity {
				return exact[i].Similarity > exact[j].Similarity
			}
			return exact[i].ID < exact[j].ID
		})
		want := make(map[string]bool, k)
		for _, n := range exact[:k] {
			want[n.ID] = true
		}

		got, err := ix.Query(vecs[id], k, id)
		require.NoError(t, err)
		require.Len(t, got, k)
		for _, n := range got {
			if want[n.ID] {
				found++
			}
		}
		total += k
	}
	assert.InDelta(t, 1.0, float64(found)/float64(total), 0.01, "recall@%d", k)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}
