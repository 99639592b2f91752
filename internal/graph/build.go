// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"

	"github.com/pdiddy/citegraph/internal/index"
	"github.com/pdiddy/citegraph/pkg/types"
)

// Querier is the nearest-neighbour lookup the semantic builder needs.
type Querier interface {
	Query(vec []float32, k int, excludeID string) ([]index.Neighbor, error)
}

// Citation builds the directed citation graph: one vertex per paper with an
// external id and an edge p→r of weight 1.0 for every referenced work r that
// is itself a vertex.
func Citation(papers []types.Paper) *Graph {
	g := New(true)
	for _, p := range papers {
		if p.ExternalID != "" {
			g.AddVertex(p.ExternalID)
		}
	}
	for _, p := range papers {
		if p.ExternalID == "" {
			continue
		}
		for _, ref := range p.ReferencedWorks {
			if ref == p.ExternalID || !g.HasVertex(ref) {
				continue
			}
			g.SetWeight(p.ExternalID, ref, 1.0)
		}
	}
	return g
}

// Semantic builds the undirected similarity graph over ids. Each id is
// joined to at most k nearest neighbours whose cosine similarity is at
// least tau; the edge weight is the similarity. Ids without a vector still
// become vertices.
func Semantic(ids []string, vectors map[string][]float32, idx Querier, k int, tau float64) (*Graph, error) {
	g := New(false)
	for _, id := range ids {
		g.AddVertex(id)
	}
	for _, id := range ids {
		vec, ok := vectors[id]
		if !ok {
			continue
		}
		hits, err := idx.Query(vec, k, id)
		if err != nil {
			return nil, fmt.Errorf("querying neighbours of %s: %w", id, err)
		}
		for _, h := range hits {
			if h.ID == id || !g.HasVertex(h.ID) || h.Similarity < tau {
				continue
			}
			g.SetWeight(id, h.ID, h.Similarity)
		}
	}
	return g, nil
}

// Fuse combines a semantic and a citation graph into one undirected graph
// over the semantic vertex set. Each semantic edge adds alpha·w and each
// citation edge with both endpoints present adds beta, so mutual citations
// contribute twice.
func Fuse(semantic, citation *Graph, alpha, beta float64) *Graph {
	fused := New(false)
	for _, id := range semantic.Vertices() {
		fused.AddVertex(id)
	}
	for _, e := range semantic.Edges() {
		fused.AddWeight(e.From, e.To, alpha*e.Weight)
	}
	for _, e := range citation.Edges() {
		if !fused.HasVertex(e.From) || !fused.HasVertex(e.To) {
			continue
		}
		fused.AddWeight(e.From, e.To, beta)
	}
	return fused
}
