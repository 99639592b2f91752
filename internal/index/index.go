// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index provides approximate nearest-neighbour search over paper
// embeddings using cosine similarity.
package index

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/coder/hnsw"
)

// Graph construction parameters.
const (
	DefaultM        = 32
	DefaultEfSearch = 200
)

var (
	// ErrDimensionMismatch reports a vector whose length differs from the
	// dimension fixed by the first Add.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrZeroVector reports a vector with zero norm; cosine similarity is
	// undefined for it.
	ErrZeroVector = errors.New("zero vector")
)

// Neighbor is one query hit.
type Neighbor struct {
	ID         string
	Similarity float64
}

// Index is an HNSW graph keyed by paper id. It is not safe for concurrent
// mutation; build it once, then query.
type Index struct {
	g    *hnsw.Graph[string]
	vecs map[string][]float32
	dim  int
}

// New returns an empty index. The seed fixes the level assignment so two
// indices built from the same inserts in the same order are identical.
func New(seed int64) *Index {
	g := hnsw.NewGraph[string]()
	g.M = DefaultM
	g.EfSearch = DefaultEfSearch
	g.Distance = hnsw.CosineDistance
	g.Rng = rand.New(rand.NewSource(seed))
	return &Index{g: g, vecs: make(map[string][]float32)}
}

// Dim returns the fixed vector dimension, or 0 before the first Add.
func (ix *Index) Dim() int { return ix.dim }

// Len returns the number of indexed vectors.
func (ix *Index) Len() int { return len(ix.vecs) }

// Add inserts vec under id, replacing any previous vector for id.
func (ix *Index) Add(id string, vec []float32) error {
	if ix.dim != 0 && len(vec) != ix.dim {
		return fmt.Errorf("adding %s: %w: got %d, want %d", id, ErrDimensionMismatch, len(vec), ix.dim)
	}
	if len(vec) == 0 || norm(vec) == 0 {
		return fmt.Errorf("adding %s: %w", id, ErrZeroVector)
	}
	if ix.dim == 0 {
		ix.dim = len(vec)
	}
	v := append([]float32(nil), vec...)
	ix.vecs[id] = v
	ix.g.Add(hnsw.MakeNode(id, v))
	return nil
}

// Query returns up to k neighbours of vec, most similar first, skipping
// excludeID. Similarities are exact cosine values; equal similarities are
// ordered by ascending id.
func (ix *Index) Query(vec []float32, k int, excludeID string) ([]Neighbor, error) {
	if k <= 0 || len(ix.vecs) == 0 {
		return nil, nil
	}
	if len(vec) != ix.dim {
		return nil, fmt.Errorf("querying: %w: got %d, want %d", ErrDimensionMismatch, len(vec), ix.dim)
	}
	if norm(vec) == 0 {
		return nil, nil
	}

	want := k
	if excludeID != "" {
		want++
	}
	// coder/hnsw uses the requested count as its search width, so ask for
	// at least EfSearch candidates and trim after exact rescoring.
	width := min(max(want, ix.g.EfSearch), len(ix.vecs))

	hits := ix.g.Search(vec, width)
	out := make([]Neighbor, 0, len(hits))
	for _, h := range hits {
		if h.Key == excludeID {
			continue
		}
		out = append(out, Neighbor{ID: h.Key, Similarity: Cosine(vec, ix.vecs[h.Key])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Vector returns the stored vector for id.
func (ix *Index) Vector(id string) ([]float32, bool) {
	v, ok := ix.vecs[id]
	return v, ok
}

// Cosine returns the cosine similarity of a and b in float64, or 0 when
// either has zero norm or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}
