// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores papers from six signals and selects the top-N and
// community-diversified result lists.
package rank

import (
	"math"
	"strings"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/index"
	"github.com/pdiddy/citegraph/pkg/types"
)

// DefaultVenues are the venues that earn the venue bonus.
var DefaultVenues = []string{"acl", "emnlp", "naacl", "coling", "neurips", "icml"}

// Similarity returns the cosine similarity of each vector to query.
func Similarity(vectors map[string][]float32, query []float32) map[string]float64 {
	out := make(map[string]float64, len(vectors))
	for id, v := range vectors {
		out[id] = index.Cosine(v, query)
	}
	return out
}

// Recency returns exp(-lambda·max(0, refYear-year)) per paper. Papers
// dated after refYear score 1.
func Recency(papers []types.Paper, refYear int, lambda float64) map[string]float64 {
	out := make(map[string]float64, len(papers))
	for _, p := range papers {
		if p.ExternalID == "" {
			continue
		}
		age := max(0, refYear-p.Year)
		out[p.ExternalID] = math.Exp(-lambda * float64(age))
	}
	return out
}

// LogCitations returns log1p(cites) min-max normalized across papers.
// Unknown counts are treated as 0.
func LogCitations(papers []types.Paper) map[string]float64 {
	raw := make(map[string]float64, len(papers))
	for _, p := range papers {
		if p.ExternalID == "" {
			continue
		}
		raw[p.ExternalID] = math.Log1p(float64(max(0, p.Cites())))
	}
	return graph.Normalize(raw)
}

// VenueBonus returns 1 for papers whose lower-cased venue is in venues.
func VenueBonus(papers []types.Paper, venues []string) map[string]float64 {
	set := make(map[string]struct{}, len(venues))
	for _, v := range venues {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	out := make(map[string]float64, len(papers))
	for _, p := range papers {
		if p.ExternalID == "" {
			continue
		}
		if _, ok := set[p.VenueKey()]; ok && p.VenueKey() != "" {
			out[p.ExternalID] = 1
		} else {
			out[p.ExternalID] = 0
		}
	}
	return out
}

// BenchmarkFlag returns 1 for papers flagged as dataset or benchmark papers.
func BenchmarkFlag(papers []types.Paper) map[string]float64 {
	out := make(map[string]float64, len(papers))
	for _, p := range papers {
		if p.ExternalID == "" {
			continue
		}
		if p.MentionsBenchmark {
			out[p.ExternalID] = 1
		} else {
			out[p.ExternalID] = 0
		}
	}
	return out
}
